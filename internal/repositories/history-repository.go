package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
	"equipment-system/pkg/clock"
)

const historyTable = "history_events"

var historyColumns = []string{"id", "aggregate_type", "aggregate_id", "kind", "actor", "text", "occurred_at"}

type HistoryRepositoryInterface interface {
	Append(ctx context.Context, tx pgx.Tx, events ...entities.HistoryEvent) error
	GetByAggregate(ctx context.Context, aggregateType entities.AggregateType, aggregateID uuid.UUID) ([]entities.HistoryEvent, error)
}

type HistoryRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewHistoryRepository(storage *pgxpool.Pool, logger *zap.Logger) HistoryRepositoryInterface {
	return &HistoryRepository{storage: storage, logger: logger}
}

func (r *HistoryRepository) Append(ctx context.Context, tx pgx.Tx, events ...entities.HistoryEvent) error {
	if len(events) == 0 {
		return nil
	}
	builder := psql.Insert(historyTable).Columns(historyColumns...)
	for _, e := range events {
		builder = builder.Values(e.ID, e.AggregateType, e.AggregateID, e.Kind, e.Actor, e.Text, clock.UTC(e.OccurredAt))
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return err
	}
	if _, err := pick(r.storage, tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert history events: %w", err)
	}
	return nil
}

func (r *HistoryRepository) GetByAggregate(ctx context.Context, aggregateType entities.AggregateType, aggregateID uuid.UUID) ([]entities.HistoryEvent, error) {
	query, args, err := psql.Select(historyColumns...).
		From(historyTable).
		Where(sq.Eq{"aggregate_type": aggregateType, "aggregate_id": aggregateID}).
		OrderBy("occurred_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events := make([]entities.HistoryEvent, 0)
	for rows.Next() {
		var e entities.HistoryEvent
		var text *string
		if err := rows.Scan(&e.ID, &e.AggregateType, &e.AggregateID, &e.Kind, &e.Actor, &text, &e.OccurredAt); err != nil {
			return nil, fmt.Errorf("scan history event: %w", err)
		}
		if text != nil {
			e.Text = *text
		}
		e.OccurredAt = clock.UTC(e.OccurredAt)
		events = append(events, e)
	}
	return events, rows.Err()
}

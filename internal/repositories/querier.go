package repositories

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	apperrors "equipment-system/pkg/errors"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// pick returns the transaction when there is one.
func pick(pool querier, tx pgx.Tx) querier {
	if tx != nil {
		return tx
	}
	return pool
}

// execVersioned runs an UPDATE guarded by "version = expected" and reports a lost race
// as a conflict.
func execVersioned(ctx context.Context, q querier, builder sq.UpdateBuilder, entity string, id uuid.UUID, expected int) error {
	query, args, err := builder.
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": id, "version": expected, "is_deleted": false}).
		ToSql()
	if err != nil {
		return err
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewConflictError("%s %s was modified by another request", entity, id)
	}
	return nil
}

func countQuery(ctx context.Context, q querier, builder sq.SelectBuilder) (uint64, error) {
	query, args, err := builder.Columns("COUNT(*)").ToSql()
	if err != nil {
		return 0, err
	}
	var total uint64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

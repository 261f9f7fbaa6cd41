package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/clock"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/eventbus"
)

const (
	equipmentListCachePrefix = "equipments_"
	idempotencyKeyPrefix     = "idem"
)

// BaseService holds what every workflow service needs besides its own repositories.
type BaseService struct {
	cache       repositories.CacheRepositoryInterface
	idempotency repositories.IdempotencyRepositoryInterface
	history     repositories.HistoryRepositoryInterface
	bus         *eventbus.Bus
	clock       clock.Clock
	logger      *zap.Logger
}

func NewBaseService(
	cache repositories.CacheRepositoryInterface,
	idempotency repositories.IdempotencyRepositoryInterface,
	history repositories.HistoryRepositoryInterface,
	bus *eventbus.Bus,
	clk clock.Clock,
	logger *zap.Logger,
) *BaseService {
	return &BaseService{
		cache:       cache,
		idempotency: idempotency,
		history:     history,
		bus:         bus,
		clock:       clk,
		logger:      logger,
	}
}

func (s *BaseService) now() time.Time {
	return s.clock.Now()
}

func (s *BaseService) CacheGet(ctx context.Context, key string, dest interface{}) bool {
	if s.cache == nil {
		return false
	}
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		if !repositories.IsCacheMiss(err) {
			s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(cached), dest); err != nil {
		s.logger.Warn("cache entry is corrupt", zap.String("key", key), zap.Error(err))
		return false
	}
	s.logger.Debug("cache hit", zap.String("key", key))
	return true
}

func (s *BaseService) CacheSet(ctx context.Context, key string, data interface{}, ttl time.Duration) {
	if s.cache == nil {
		return
	}
	serialized, err := json.Marshal(data)
	if err != nil {
		s.logger.Warn("cache encode failed", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, serialized, ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// invalidateEquipmentList drops every cached equipment page. A failure only costs
// freshness until the TTL expires, so it is logged and swallowed.
func (s *BaseService) invalidateEquipmentList(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.RemoveByPrefix(ctx, equipmentListCachePrefix); err != nil {
		s.logger.Warn("equipment list cache invalidation failed", zap.Error(err))
	}
}

func (s *BaseService) historyEvent(aggregate entities.AggregateType, id uuid.UUID, kind entities.HistoryKind, actor, text string) entities.HistoryEvent {
	return entities.HistoryEvent{
		ID:            uuid.New(),
		AggregateType: aggregate,
		AggregateID:   id,
		Kind:          kind,
		Actor:         actor,
		Text:          text,
		OccurredAt:    s.now(),
	}
}

func (s *BaseService) appendHistory(ctx context.Context, tx pgx.Tx, events ...entities.HistoryEvent) error {
	if err := s.history.Append(ctx, tx, events...); err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	return nil
}

func (s *BaseService) GetHistory(ctx context.Context, aggregate entities.AggregateType, id uuid.UUID) ([]entities.HistoryEvent, error) {
	return s.history.GetByAggregate(ctx, aggregate, id)
}

func (s *BaseService) publish(ctx context.Context, events ...eventbus.Event) {
	for _, e := range events {
		s.bus.Publish(ctx, e)
	}
}

type idempotentRecord struct {
	Fingerprint string          `json:"fingerprint"`
	Result      json.RawMessage `json:"result"`
}

func requestFingerprint(request interface{}) (string, error) {
	raw, err := json.Marshal(request)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:]), nil
}

// idempotent runs fn at most once per (scope, target, key) within the key TTL. A retry with
// a completed key and the same request gets the stored result back; the same key with a
// different request, or while the first call is still running, is a conflict. An empty key
// disables the guard.
func idempotent[T any](
	ctx context.Context,
	s *BaseService,
	scope string,
	target uuid.UUID,
	key string,
	request interface{},
	fn func() (T, error),
) (T, error) {
	var zero T
	if key == "" || s.idempotency == nil {
		return fn()
	}

	fingerprint, err := requestFingerprint(request)
	if err != nil {
		return zero, fmt.Errorf("fingerprint request for idempotency key %s: %w", key, err)
	}
	fullKey := fmt.Sprintf("%s:%s:%s:%s", idempotencyKeyPrefix, scope, target, key)
	state, stored, err := s.idempotency.Reserve(ctx, fullKey)
	if err != nil {
		return zero, fmt.Errorf("reserve idempotency key: %w", err)
	}

	switch state {
	case repositories.IdempotencyCompleted:
		var record idempotentRecord
		if err := json.Unmarshal([]byte(stored), &record); err != nil {
			return zero, fmt.Errorf("decode stored result for idempotency key %s: %w", key, err)
		}
		if record.Fingerprint != fingerprint {
			return zero, apperrors.NewConflictError("idempotency key %s was already used with a different request", key)
		}
		var replay T
		if err := json.Unmarshal(record.Result, &replay); err != nil {
			return zero, fmt.Errorf("decode stored result for idempotency key %s: %w", key, err)
		}
		s.logger.Info("idempotent replay", zap.String("scope", scope), zap.String("target", target.String()), zap.String("key", key))
		return replay, nil
	case repositories.IdempotencyInFlight:
		return zero, apperrors.NewConflictError("request with idempotency key %s is still being processed", key)
	}

	result, err := fn()
	if err != nil {
		if relErr := s.idempotency.Release(ctx, fullKey); relErr != nil {
			s.logger.Warn("Не удалось освободить ключ идемпотентности", zap.String("key", fullKey), zap.Error(relErr))
		}
		return zero, err
	}

	// Изменения уже закоммичены, поэтому результат сохраняем даже если клиент отключился.
	// Если сохранить не удалось, ключ освобождаем: повтор упрётся в проверку статуса.
	storeCtx := context.WithoutCancel(ctx)
	if err := s.storeIdempotentResult(storeCtx, fullKey, fingerprint, result); err != nil {
		s.logger.Error("Не удалось сохранить результат идемпотентной операции", zap.String("key", fullKey), zap.Error(err))
		if relErr := s.idempotency.Release(storeCtx, fullKey); relErr != nil {
			s.logger.Warn("Не удалось освободить ключ идемпотентности", zap.String("key", fullKey), zap.Error(relErr))
		}
	}
	return result, nil
}

func (s *BaseService) storeIdempotentResult(ctx context.Context, fullKey, fingerprint string, result interface{}) error {
	raw, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	encoded, err := json.Marshal(idempotentRecord{Fingerprint: fingerprint, Result: raw})
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	return s.idempotency.Complete(ctx, fullKey, string(encoded))
}

// checkVersion rejects a command built against a stale read.
func checkVersion(entity string, id uuid.UUID, current int, expected *int) error {
	if expected != nil && *expected != current {
		return apperrors.NewConflictError("%s %s has version %d, request expected %d", entity, id, current, *expected)
	}
	return nil
}

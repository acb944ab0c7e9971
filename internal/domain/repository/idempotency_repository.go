package repository

import (
	"context"

	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
)

// IdempotencyRepository stores replayable responses keyed by client key and scope
type IdempotencyRepository interface {
	GetByKey(ctx context.Context, key, scope string) (*entity.IdempotencyKey, error)
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// DeleteExpired removes expired keys and reports how many were purged
	DeleteExpired(ctx context.Context) (int64, error)
}

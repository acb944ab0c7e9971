package repository

import "context"

// Transactor runs fn inside a single store transaction. Repositories called with
// the ctx passed to fn join that transaction. A non-nil error from fn rolls back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

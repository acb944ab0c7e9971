// Package memory is an in-process implementation of the domain repositories,
// used for local demos (DB_DRIVER=memory) and for service tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	infraRepo "github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
)

// ErrDuplicate mirrors a unique-index violation in the SQL store.
var ErrDuplicate = domainRepo.ErrDuplicate

type txMarker struct{}

// Store holds every table in memory. Transactions are serialized and roll back
// by restoring a snapshot taken when they began. Writes outside a transaction
// wait for the open one to finish, so a rollback only ever discards its own rows.
type Store struct {
	mu   sync.RWMutex
	txMu sync.Mutex

	orgs      map[uuid.UUID]entity.Organization
	users     map[uuid.UUID]entity.AppUser
	products  []entity.Product
	movements []entity.InventoryMovement
	customers []entity.Customer
	bills     []entity.Bill
	billItems []entity.BillItem
	orders    []entity.Order
	idem      map[string]entity.IdempotencyKey

	now func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		orgs:  make(map[uuid.UUID]entity.Organization),
		users: make(map[uuid.UUID]entity.AppUser),
		idem:  make(map[string]entity.IdempotencyKey),
		now:   time.Now,
	}
}

// SetClock overrides the timestamp source
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) Products() domainRepo.ProductRepository { return &productRepo{s} }
func (s *Store) Inventory() domainRepo.InventoryRepository { return &inventoryRepo{s} }
func (s *Store) Customers() domainRepo.CustomerRepository { return &customerRepo{s} }
func (s *Store) Bills() domainRepo.BillRepository { return &billRepo{s} }
func (s *Store) Orders() domainRepo.OrderRepository { return &orderRepo{s} }
func (s *Store) Users() domainRepo.UserRepository { return &userRepo{s} }
func (s *Store) Organizations() domainRepo.OrganizationRepository { return &orgRepo{s} }
func (s *Store) Idempotency() domainRepo.IdempotencyRepository { return &idempotencyRepo{s} }
func (s *Store) Transactor() domainRepo.Transactor { return &transactor{s} }

type snapshot struct {
	orgs      map[uuid.UUID]entity.Organization
	users     map[uuid.UUID]entity.AppUser
	products  []entity.Product
	movements []entity.InventoryMovement
	customers []entity.Customer
	bills     []entity.Bill
	billItems []entity.BillItem
	orders    []entity.Order
	idem      map[string]entity.IdempotencyKey
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		orgs:      cloneMap(s.orgs),
		users:     cloneMap(s.users),
		products:  append([]entity.Product(nil), s.products...),
		movements: append([]entity.InventoryMovement(nil), s.movements...),
		customers: append([]entity.Customer(nil), s.customers...),
		bills:     append([]entity.Bill(nil), s.bills...),
		billItems: append([]entity.BillItem(nil), s.billItems...),
		orders:    append([]entity.Order(nil), s.orders...),
		idem:      cloneMap(s.idem),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orgs = snap.orgs
	s.users = snap.users
	s.products = snap.products
	s.movements = snap.movements
	s.customers = snap.customers
	s.bills = snap.bills
	s.billItems = snap.billItems
	s.orders = snap.orders
	s.idem = snap.idem
}

// lockWrite takes the table lock for a write and returns its release. Outside
// a transaction it first takes txMu, so it must not be called with the outer
// ctx from inside a transaction func.
func (s *Store) lockWrite(ctx context.Context) func() {
	if inTx(ctx) {
		s.mu.Lock()
		return s.mu.Unlock
	}
	s.txMu.Lock()
	s.mu.Lock()
	return func() {
		s.mu.Unlock()
		s.txMu.Unlock()
	}
}

func inTx(ctx context.Context) bool {
	_, ok := ctx.Value(txMarker{}).(bool)
	return ok
}

type transactor struct {
	s *Store
}

func (t *transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if inTx(ctx) {
		return fn(ctx)
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

// inOrg applies the same rule as the SQL org scope: no org in ctx means no filter.
func inOrg(ctx context.Context, orgID *uuid.UUID) bool {
	want, ok := infraRepo.GetOrgID(ctx)
	if !ok {
		return true
	}
	return orgID != nil && *orgID == want
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

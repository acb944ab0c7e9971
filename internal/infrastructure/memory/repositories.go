package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	domainRepo "github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/pagination"
)

const defaultSearchLimit = 10

// --- products ---

type productRepo struct{ s *Store }

func (r *productRepo) Create(ctx context.Context, product *entity.Product) error {
	defer r.s.lockWrite(ctx)()
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	for _, p := range r.s.products {
		if p.ID == product.ID {
			return ErrDuplicate
		}
	}
	stamp(&product.CreatedAt, r.s.now())
	product.UpdatedAt = product.CreatedAt
	r.s.products = append(r.s.products, *product)
	return nil
}

func (r *productRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.products {
		if p.ID == id && inOrg(ctx, p.OrgID) {
			found := p
			return &found, nil
		}
	}
	return nil, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error) {
	want := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.Product{}
	for _, p := range r.s.products {
		if want[p.ID] && inOrg(ctx, p.OrgID) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *productRepo) Search(ctx context.Context, params domainRepo.ProductSearchParams) ([]entity.Product, error) {
	if params.IsEmpty() {
		return []entity.Product{}, nil
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultSearchLimit
	}
	needle := strings.ToLower(params.Name)

	r.s.mu.RLock()
	out := []entity.Product{}
	for _, p := range r.s.products {
		if !inOrg(ctx, p.OrgID) {
			continue
		}
		var match bool
		switch {
		case params.Barcode != "":
			match = p.Barcode == params.Barcode
		case params.SKU != "":
			match = p.SKU == params.SKU
		default:
			match = strings.Contains(strings.ToLower(p.Name), needle)
		}
		if match {
			out = append(out, p)
		}
	}
	r.s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *productRepo) List(ctx context.Context) ([]entity.Product, error) {
	r.s.mu.RLock()
	out := []entity.Product{}
	for _, p := range r.s.products {
		if inOrg(ctx, p.OrgID) {
			out = append(out, p)
		}
	}
	r.s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// LockForUpdate is a no-op: memory transactions are already serialized.
func (r *productRepo) LockForUpdate(ctx context.Context, ids []uuid.UUID) error {
	return nil
}

// --- inventory ---

type inventoryRepo struct{ s *Store }

func (r *inventoryRepo) SumByProduct(ctx context.Context, productID uuid.UUID) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	total := 0
	for _, m := range r.s.movements {
		if m.ProductID == productID && inOrg(ctx, m.OrgID) {
			total += m.ChangeQty
		}
	}
	return total, nil
}

func (r *inventoryRepo) SumByProducts(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	totals := make(map[uuid.UUID]int, len(productIDs))
	for _, id := range productIDs {
		totals[id] = 0
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if _, ok := totals[m.ProductID]; ok && inOrg(ctx, m.OrgID) {
			totals[m.ProductID] += m.ChangeQty
		}
	}
	return totals, nil
}

func (r *inventoryRepo) CreateBatch(ctx context.Context, movements []entity.InventoryMovement) error {
	defer r.s.lockWrite(ctx)()
	now := r.s.now()
	for i := range movements {
		if movements[i].ID == uuid.Nil {
			movements[i].ID = uuid.New()
		}
		stamp(&movements[i].CreatedAt, now)
	}
	r.s.movements = append(r.s.movements, movements...)
	return nil
}

func (r *inventoryRepo) ListByReference(ctx context.Context, reference string) ([]entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.InventoryMovement{}
	for _, m := range r.s.movements {
		if m.Reference == reference && inOrg(ctx, m.OrgID) {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- customers ---

type customerRepo struct{ s *Store }

func (r *customerRepo) Create(ctx context.Context, customer *entity.Customer) error {
	defer r.s.lockWrite(ctx)()
	for _, c := range r.s.customers {
		if c.Mobile == customer.Mobile && sameOrg(c.OrgID, customer.OrgID) {
			return ErrDuplicate
		}
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	stamp(&customer.CreatedAt, r.s.now())
	customer.UpdatedAt = customer.CreatedAt
	r.s.customers = append(r.s.customers, *customer)
	return nil
}

func (r *customerRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if c.ID == id && inOrg(ctx, c.OrgID) {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

func (r *customerRepo) GetByMobile(ctx context.Context, mobile string) (*entity.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, c := range r.s.customers {
		if c.Mobile == mobile && inOrg(ctx, c.OrgID) {
			found := c
			return &found, nil
		}
	}
	return nil, nil
}

// --- bills ---

type billRepo struct{ s *Store }

func (r *billRepo) Create(ctx context.Context, bill *entity.Bill) error {
	defer r.s.lockWrite(ctx)()
	for _, b := range r.s.bills {
		if b.BillNumber == bill.BillNumber {
			return ErrDuplicate
		}
	}
	if bill.ID == uuid.Nil {
		bill.ID = uuid.New()
	}
	stamp(&bill.CreatedAt, r.s.now())
	stored := *bill
	stored.Items = nil
	r.s.bills = append(r.s.bills, stored)
	return nil
}

func (r *billRepo) CreateItems(ctx context.Context, items []entity.BillItem) error {
	defer r.s.lockWrite(ctx)()
	for i := range items {
		if items[i].ID == uuid.Nil {
			items[i].ID = uuid.New()
		}
	}
	r.s.billItems = append(r.s.billItems, items...)
	return nil
}

func (r *billRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Bill, error) {
	return r.find(ctx, func(b entity.Bill) bool { return b.ID == id })
}

func (r *billRepo) GetByNumber(ctx context.Context, billNumber string) (*entity.Bill, error) {
	return r.find(ctx, func(b entity.Bill) bool { return b.BillNumber == billNumber })
}

func (r *billRepo) find(ctx context.Context, match func(entity.Bill) bool) (*entity.Bill, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.bills {
		if match(b) && inOrg(ctx, b.OrgID) {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (r *billRepo) GetItems(ctx context.Context, billID uuid.UUID) ([]entity.BillItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := []entity.BillItem{}
	for _, item := range r.s.billItems {
		if item.BillID == billID {
			out = append(out, item)
		}
	}
	return out, nil
}

// newestFirst returns the visible bills, latest first; ties keep reverse insertion order.
func (r *billRepo) newestFirst(ctx context.Context) []entity.Bill {
	r.s.mu.RLock()
	out := make([]entity.Bill, 0, len(r.s.bills))
	for i := len(r.s.bills) - 1; i >= 0; i-- {
		if inOrg(ctx, r.s.bills[i].OrgID) {
			out = append(out, r.s.bills[i])
		}
	}
	r.s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *billRepo) ListRecent(ctx context.Context, limit int) ([]entity.Bill, error) {
	bills := r.newestFirst(ctx)
	if limit > 0 && len(bills) > limit {
		bills = bills[:limit]
	}
	return bills, nil
}

func (r *billRepo) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.Bill, int64, error) {
	params.Validate()
	bills := r.newestFirst(ctx)
	total := int64(len(bills))
	start := params.Offset()
	if start >= len(bills) {
		return []entity.Bill{}, total, nil
	}
	end := start + params.PerPage
	if end > len(bills) {
		end = len(bills)
	}
	return bills[start:end], total, nil
}

// --- orders ---

type orderRepo struct{ s *Store }

func (r *orderRepo) Create(ctx context.Context, order *entity.Order) error {
	defer r.s.lockWrite(ctx)()
	for _, o := range r.s.orders {
		if o.OrderNumber == order.OrderNumber {
			return ErrDuplicate
		}
	}
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	stamp(&order.CreatedAt, r.s.now())
	order.UpdatedAt = order.CreatedAt
	r.s.orders = append(r.s.orders, *order)
	return nil
}

func (r *orderRepo) Count(ctx context.Context, filter domainRepo.OrderCountFilter) (int64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var count int64
	for _, o := range r.s.orders {
		if inOrg(ctx, o.OrgID) && matchesOrder(o, filter) {
			count++
		}
	}
	return count, nil
}

func matchesOrder(o entity.Order, f domainRepo.OrderCountFilter) bool {
	if f.CreatedFrom != nil && o.CreatedAt.Before(*f.CreatedFrom) {
		return false
	}
	if f.CreatedTo != nil && o.CreatedAt.After(*f.CreatedTo) {
		return false
	}
	for _, s := range f.ExcludeStatus {
		if o.Status == s {
			return false
		}
	}
	if len(f.Statuses) > 0 {
		found := false
		for _, s := range f.Statuses {
			if o.Status == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.DeliveryFrom != nil || f.DeliveryBefore != nil {
		if o.ExpectedDelivery == nil {
			return false
		}
		if f.DeliveryFrom != nil && o.ExpectedDelivery.Before(*f.DeliveryFrom) {
			return false
		}
		if f.DeliveryBefore != nil && !o.ExpectedDelivery.Before(*f.DeliveryBefore) {
			return false
		}
	}
	return true
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]entity.Order, error) {
	r.s.mu.RLock()
	out := []entity.Order{}
	for i := len(r.s.orders) - 1; i >= 0; i-- {
		if inOrg(ctx, r.s.orders[i].OrgID) {
			out = append(out, r.s.orders[i])
		}
	}
	r.s.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- users and organizations ---

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *entity.AppUser) error {
	defer r.s.lockWrite(ctx)()
	user.Email = strings.ToLower(user.Email)
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return ErrDuplicate
		}
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	stamp(&user.CreatedAt, r.s.now())
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.AppUser, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*entity.AppUser, error) {
	email = strings.ToLower(email)
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

type orgRepo struct{ s *Store }

func (r *orgRepo) Create(ctx context.Context, org *entity.Organization) error {
	defer r.s.lockWrite(ctx)()
	for _, o := range r.s.orgs {
		if o.Slug == org.Slug {
			return ErrDuplicate
		}
	}
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	stamp(&org.CreatedAt, r.s.now())
	org.UpdatedAt = org.CreatedAt
	r.s.orgs[org.ID] = *org
	return nil
}

func (r *orgRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	o, ok := r.s.orgs[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (r *orgRepo) GetBySlug(ctx context.Context, slug string) (*entity.Organization, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, o := range r.s.orgs {
		if o.Slug == slug {
			found := o
			return &found, nil
		}
	}
	return nil, nil
}

// --- idempotency keys ---

type idempotencyRepo struct{ s *Store }

func idemKey(key, scope string) string {
	return scope + "\x00" + key
}

func (r *idempotencyRepo) GetByKey(ctx context.Context, key, scope string) (*entity.IdempotencyKey, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	k, ok := r.s.idem[idemKey(key, scope)]
	if !ok {
		return nil, nil
	}
	return &k, nil
}

func (r *idempotencyRepo) Create(ctx context.Context, ikey *entity.IdempotencyKey) error {
	defer r.s.lockWrite(ctx)()
	k := idemKey(ikey.Key, ikey.Scope)
	if _, exists := r.s.idem[k]; exists {
		return ErrDuplicate
	}
	if ikey.ID == uuid.Nil {
		ikey.ID = uuid.New()
	}
	stamp(&ikey.CreatedAt, r.s.now())
	r.s.idem[k] = *ikey
	return nil
}

func (r *idempotencyRepo) DeleteExpired(ctx context.Context) (int64, error) {
	defer r.s.lockWrite(ctx)()
	now := r.s.now()
	var purged int64
	for k, v := range r.s.idem {
		if now.After(v.ExpiresAt) {
			delete(r.s.idem, k)
			purged++
		}
	}
	return purged, nil
}

func stamp(t *time.Time, now time.Time) {
	if t.IsZero() {
		*t = now
	}
}

func sameOrg(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

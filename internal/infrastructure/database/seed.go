package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/domain/enum"
	"github.com/sangkips/pharmacy-pos/internal/domain/repository"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DemoOrgName is the organization created by SeedDemoData
const DemoOrgName = "Ligimed Pharmacy"

// SeedRepositories are the stores the seeder writes to. Both the SQL and the
// in-memory implementations satisfy them.
type SeedRepositories struct {
	Organizations repository.OrganizationRepository
	Users         repository.UserRepository
	Products      repository.ProductRepository
	Inventory     repository.InventoryRepository
	Orders        repository.OrderRepository
}

// SeedOptions configures the demo cashier account
type SeedOptions struct {
	UserEmail    string
	UserPassword string
}

type seedProduct struct {
	name, sku, barcode string
	price              string
	opening            int
	threshold          *int
}

func intPtr(n int) *int { return &n }

var demoProducts = []seedProduct{
	{"Paracetamol 500mg Tablets", "PARA-500", "8901000000011", "15.00", 400, nil},
	{"Amoxicillin 250mg Capsules", "AMOX-250", "8901000000028", "12.00", 60, nil},
	{"Cetirizine 10mg Tablets", "CETI-010", "8901000000035", "8.50", 95, nil},
	{"ORS Sachet Orange", "ORS-ORG", "8901000000042", "22.00", 250, nil},
	{"Insulin Glargine Pen", "INSU-GLA", "8901000000059", "780.00", 4, intPtr(10)},
	{"Vitamin D3 60K Capsules", "VITD-60K", "8901000000066", "35.00", 150, nil},
}

// SeedDemoData creates a demo organization with a cashier, a small catalogue
// with opening stock and a few purchase orders. It does nothing when the demo
// organization already exists.
func SeedDemoData(ctx context.Context, repos SeedRepositories, opts SeedOptions, log *zap.Logger) (*entity.Organization, error) {
	slug := utils.Slugify(DemoOrgName)
	existing, err := repos.Organizations.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("seed: look up organization: %w", err)
	}
	if existing != nil {
		log.Info("demo data already present", zap.String("org", slug))
		return existing, nil
	}

	org := &entity.Organization{Name: DemoOrgName, Slug: slug}
	if err := repos.Organizations.Create(ctx, org); err != nil {
		return nil, fmt.Errorf("seed: create organization: %w", err)
	}

	if opts.UserEmail != "" && opts.UserPassword != "" {
		hash, err := utils.HashPassword(opts.UserPassword)
		if err != nil {
			return nil, fmt.Errorf("seed: hash password: %w", err)
		}
		cashier := &entity.AppUser{
			OrgID:    org.ID,
			Name:     "Counter Cashier",
			Email:    opts.UserEmail,
			Password: hash,
			Role:     enum.UserRoleCashier,
		}
		if err := repos.Users.Create(ctx, cashier); err != nil {
			return nil, fmt.Errorf("seed: create cashier: %w", err)
		}
	}

	movements := make([]entity.InventoryMovement, 0, len(demoProducts))
	for _, sp := range demoProducts {
		product := &entity.Product{
			OrgID:            &org.ID,
			Name:             sp.name,
			SKU:              sp.sku,
			Barcode:          sp.barcode,
			UnitPrice:        decimal.RequireFromString(sp.price),
			ReorderThreshold: sp.threshold,
		}
		if err := repos.Products.Create(ctx, product); err != nil {
			return nil, fmt.Errorf("seed: create product %s: %w", sp.sku, err)
		}
		movements = append(movements, entity.InventoryMovement{
			OrgID:        &org.ID,
			ProductID:    product.ID,
			ChangeQty:    sp.opening,
			MovementType: enum.MovementTypeOpening,
			Reference:    "OPENING",
			UnitCost:     product.UnitPrice,
		})
	}
	if err := repos.Inventory.CreateBatch(ctx, movements); err != nil {
		return nil, fmt.Errorf("seed: opening stock: %w", err)
	}

	today := time.Now()
	orders := []entity.Order{
		{CompanyName: "Medline Distributors", Status: enum.OrderStatusConfirmed, ExpectedDelivery: &today},
		{CompanyName: "Apex Pharma Supply", Status: enum.OrderStatusInTransit},
		{CompanyName: "Medline Distributors", Status: enum.OrderStatusDelivered},
	}
	for i := range orders {
		orders[i].OrgID = &org.ID
		orders[i].OrderNumber = "PO-" + uuid.NewString()[:8]
		if err := repos.Orders.Create(ctx, &orders[i]); err != nil {
			return nil, fmt.Errorf("seed: create order: %w", err)
		}
	}

	log.Info("seeded demo data",
		zap.String("org_id", org.ID.String()),
		zap.Int("products", len(demoProducts)),
	)
	return org, nil
}

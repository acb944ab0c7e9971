package database

import (
	"context"
	"testing"

	"github.com/sangkips/pharmacy-pos/internal/infrastructure/memory"
	infraRepo "github.com/sangkips/pharmacy-pos/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
	"go.uber.org/zap"
)

func memoryRepos(s *memory.Store) SeedRepositories {
	return SeedRepositories{
		Organizations: s.Organizations(),
		Users:         s.Users(),
		Products:      s.Products(),
		Inventory:     s.Inventory(),
		Orders:        s.Orders(),
	}
}

func TestSeedDemoData(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	opts := SeedOptions{UserEmail: "cashier@ligimed.local", UserPassword: "cashier123"}

	org, err := SeedDemoData(ctx, memoryRepos(store), opts, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	if org.Slug != "ligimed-pharmacy" {
		t.Fatalf("slug = %q", org.Slug)
	}

	user, _ := store.Users().GetByEmail(ctx, opts.UserEmail)
	if user == nil || user.OrgID != org.ID || !utils.CheckPasswordHash("cashier123", user.Password) {
		t.Fatalf("cashier not seeded correctly: %+v", user)
	}

	scoped := infraRepo.WithOrg(ctx, org.ID)
	products, _ := store.Products().List(scoped)
	if len(products) != len(demoProducts) {
		t.Fatalf("products = %d", len(products))
	}
	stock, _ := store.Inventory().SumByProduct(scoped, products[0].ID)
	if stock <= 0 {
		t.Fatalf("opening stock missing for %s", products[0].Name)
	}

	again, err := SeedDemoData(ctx, memoryRepos(store), opts, zap.NewNop())
	if err != nil || again.ID != org.ID {
		t.Fatalf("reseed should be a no-op: %v", err)
	}
	if products, _ := store.Products().List(ctx); len(products) != len(demoProducts) {
		t.Fatalf("reseed duplicated products: %d", len(products))
	}
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/pharmacy-pos/internal/domain/entity"
	"github.com/sangkips/pharmacy-pos/internal/infrastructure/memory"
	"github.com/sangkips/pharmacy-pos/pkg/apperror"
	"github.com/sangkips/pharmacy-pos/pkg/utils"
)

func newAuthFixture(t *testing.T) (*AuthService, *entity.AppUser) {
	t.Helper()
	store := memory.NewStore()
	hash, err := utils.HashPassword("s3cret-pass")
	if err != nil {
		t.Fatal(err)
	}
	user := &entity.AppUser{
		OrgID:    uuid.New(),
		Name:     "Counter One",
		Email:    "Cashier@Pharmacy.test",
		Password: hash,
		Role:     "cashier",
	}
	if err := store.Users().Create(context.Background(), user); err != nil {
		t.Fatal(err)
	}
	return NewAuthService(store.Users(), utils.NewJWTManager("test-secret", time.Hour), nil), user
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, user := newAuthFixture(t)

	out, err := svc.Login(context.Background(), &LoginInput{Email: " cashier@pharmacy.test ", Password: "s3cret-pass"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if out.Token == "" || out.User.ID != user.ID || out.User.OrgID != user.OrgID || out.User.Role != "cashier" {
		t.Fatalf("unexpected output %+v", out)
	}

	claims, err := svc.Verify(out.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.UserID != user.ID || claims.OrgID != user.OrgID {
		t.Fatalf("claims %+v", claims)
	}

	profile, err := svc.GetCurrentUser(context.Background(), claims.UserID)
	if err != nil || profile.Email != "cashier@pharmacy.test" {
		t.Fatalf("profile %+v %v", profile, err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	if _, err := svc.Login(ctx, &LoginInput{Email: "cashier@pharmacy.test", Password: "wrong"}); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("wrong password: %v", err)
	}
	if _, err := svc.Login(ctx, &LoginInput{Email: "nobody@pharmacy.test", Password: "s3cret-pass"}); !errors.Is(err, apperror.ErrInvalidCredentials) {
		t.Fatalf("unknown user: %v", err)
	}
	if _, err := svc.Login(ctx, &LoginInput{Email: "cashier@pharmacy.test"}); apperror.GetAppError(err).Code != 400 {
		t.Fatalf("missing password: %v", err)
	}
}

func TestVerifyRejectsMissingAndForgedTokens(t *testing.T) {
	svc, user := newAuthFixture(t)

	if _, err := svc.Verify(""); apperror.GetAppError(err).Message != "No token provided" {
		t.Fatalf("empty token: %v", err)
	}

	forged, _, _ := utils.NewJWTManager("other-secret", time.Hour).GenerateAccessToken(user.ID, user.OrgID, user.Email, "admin")
	if _, err := svc.Verify(forged); !errors.Is(err, apperror.ErrInvalidToken) {
		t.Fatalf("forged token: %v", err)
	}
}

func TestGetCurrentUserNotFound(t *testing.T) {
	svc, _ := newAuthFixture(t)
	if _, err := svc.GetCurrentUser(context.Background(), uuid.New()); !apperror.IsType(err, apperror.TypeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

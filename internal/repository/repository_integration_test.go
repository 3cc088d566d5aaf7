//go:build integration

package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"authgate/internal/apperror"
	"authgate/internal/database"
	"authgate/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Run with: POSTGRES_DSN=postgres://... go test -tags integration ./internal/repository/
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_DSN not set")
	}
	db, err := database.NewConnection(dsn, database.Options{MaxOpenConns: 4})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		db.Exec("TRUNCATE admin_role_assignments, admin_roles, domains, sellers, audit_logs CASCADE")
		_ = database.Close(db)
	})
	return db
}

func createRole(t *testing.T, repo AdminRoleRepository, key string, canLogin bool) *model.AdminRole {
	t.Helper()
	role := &model.AdminRole{RoleKey: key, RoleName: key, CanLogin: canLogin, Permissions: []string{"roles.read"}}
	if err := repo.Create(context.Background(), role); err != nil {
		t.Fatalf("create role %s: %v", key, err)
	}
	return role
}

func TestAssignmentUpsertIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	roles := NewAdminRoleRepository(db)
	assignments := NewAssignmentRepository(db)
	role := createRole(t, roles, "it_upsert_"+uuid.NewString()[:8], true)

	first := &model.AdminRoleAssignment{UserID: "op-1", RoleID: role.ID}
	created, err := assignments.Upsert(ctx, first)
	if err != nil || !created {
		t.Fatalf("first upsert: created=%v err=%v", created, err)
	}

	again := &model.AdminRoleAssignment{UserID: "op-1", RoleID: role.ID}
	created, err = assignments.Upsert(ctx, again)
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if created {
		t.Fatalf("second upsert reported a new row")
	}
	if again.ID != first.ID {
		t.Fatalf("second upsert returned %s, want existing %s", again.ID, first.ID)
	}

	list, err := assignments.List(ctx, "op-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d assignments, want 1 (NULL domain must collapse)", len(list))
	}
}

func TestLockForUserInsideTransaction(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	roles := NewAdminRoleRepository(db)
	assignments := NewAssignmentRepository(db)
	tx := NewTransactionManager(db)
	role := createRole(t, roles, "it_lock_"+uuid.NewString()[:8], true)

	if _, err := assignments.Upsert(ctx, &model.AdminRoleAssignment{UserID: "op-2", RoleID: role.ID}); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	err := tx.RunInTx(ctx, func(txCtx context.Context) error {
		held, err := assignments.LockForUser(txCtx, "op-2")
		if err != nil {
			return err
		}
		if len(held) != 1 || held[0].Role == nil || !held[0].Role.CanLogin {
			t.Errorf("locked rows = %+v", held)
		}
		return assignments.Delete(txCtx, held[0].ID)
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	rolesHeld, err := assignments.RolesForUser(ctx, "op-2")
	if err != nil {
		t.Fatalf("roles for user: %v", err)
	}
	if len(rolesHeld) != 0 {
		t.Fatalf("assignment survived delete: %+v", rolesHeld)
	}
}

func TestSellerEmailIsCaseInsensitive(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	sellers := NewSellerRepository(db)

	if err := sellers.Create(ctx, &model.Seller{Name: "Acme", Email: "owner@acme.test", AllowedServices: []string{}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := sellers.GetByEmail(ctx, "  Owner@ACME.test ")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.SubscriptionPlan != model.PlanFree {
		t.Fatalf("plan default = %q, want FREE", got.SubscriptionPlan)
	}

	err = sellers.Create(ctx, &model.Seller{Name: "Dup", Email: "OWNER@acme.test", AllowedServices: []string{}})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("duplicate email err = %v, want conflict", err)
	}
}

func TestUpdatePasswordHashOnlyTouchesMatchingHash(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	sellers := NewSellerRepository(db)

	oldHash := "$2a$04$old"
	seller := &model.Seller{Name: "Acme", Email: "hash@acme.test", PasswordHash: &oldHash, AllowedServices: []string{}}
	if err := sellers.Create(ctx, seller); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := db.Model(&model.Seller{}).Where("id = ?", seller.ID).Update("status", model.SellerStatusSuspended).Error; err != nil {
		t.Fatalf("suspend: %v", err)
	}

	swapped, err := sellers.UpdatePasswordHash(ctx, seller.ID, "$2a$04$stale", "$argon2id$new")
	if err != nil || swapped {
		t.Fatalf("stale swap: swapped=%v err=%v", swapped, err)
	}
	swapped, err = sellers.UpdatePasswordHash(ctx, seller.ID, oldHash, "$argon2id$new")
	if err != nil || !swapped {
		t.Fatalf("swap: swapped=%v err=%v", swapped, err)
	}

	got, err := sellers.GetByID(ctx, seller.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.SellerStatusSuspended {
		t.Fatalf("status = %q, hash swap must not rewrite other columns", got.Status)
	}
	if got.PasswordHash == nil || *got.PasswordHash != "$argon2id$new" {
		t.Fatalf("hash = %v", got.PasswordHash)
	}
}

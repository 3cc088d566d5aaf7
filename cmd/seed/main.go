// Command seed creates the built-in operator roles and, optionally, domains
// and a bootstrap Super Admin assignment. Safe to run repeatedly.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"authgate/internal/config"
	"authgate/internal/database"
	"authgate/internal/permission"
	"authgate/internal/principal"
	"authgate/internal/repository"
	"authgate/internal/service"

	"github.com/kelseyhightower/envconfig"
)

type seedConfig struct {
	Domains     []string `envconfig:"SEED_DOMAINS"`
	AdminUserID string   `envconfig:"SEED_ADMIN_USER_ID"`
}

func main() {
	if err := run(context.Background()); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	var seed seedConfig
	if err := envconfig.Process("", &seed); err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))

	db, err := database.NewConnection(cfg.DatabaseURL, database.Options{MaxOpenConns: 2})
	if err != nil {
		return err
	}
	defer database.Close(db)

	auditService := service.NewAuditService(repository.NewAuditRepository(db))
	roles := service.NewAdminRoleService(
		repository.NewAdminRoleRepository(db),
		repository.NewAssignmentRepository(db),
		repository.NewDomainRepository(db),
		repository.NewTransactionManager(db),
		auditService,
		logger,
	)

	if err := roles.SeedDefaultRoles(ctx); err != nil {
		return err
	}
	logger.Info("default roles seeded")

	if err := seedDomains(ctx, roles, seed.Domains, logger); err != nil {
		return err
	}

	if seed.AdminUserID == "" {
		return nil
	}
	superAdmin, err := findRole(ctx, roles, permission.NormalizeRoleKey("Super Admin"))
	if err != nil {
		return err
	}
	_, created, err := roles.AssignRole(ctx, principal.System, service.AssignRoleRequest{
		UserID: seed.AdminUserID,
		RoleID: superAdmin.ID,
	})
	if err != nil {
		return err
	}
	logger.Info("bootstrap operator assigned", "user_id", seed.AdminUserID, "created", created)
	return nil
}

func seedDomains(ctx context.Context, roles service.AdminRoleService, names []string, logger *slog.Logger) error {
	if len(names) == 0 {
		return nil
	}
	existing, err := roles.ListDomains(ctx)
	if err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, d := range existing {
		have[d.Name] = true
	}
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" || have[name] {
			continue
		}
		d, err := roles.CreateDomain(ctx, principal.System, service.CreateDomainRequest{Name: name})
		if err != nil {
			return err
		}
		logger.Info("domain created", "id", d.ID, "slug", d.Slug)
	}
	return nil
}

func findRole(ctx context.Context, roles service.AdminRoleService, key string) (*service.RoleResponse, error) {
	list, err := roles.ListRoles(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].RoleKey == key {
			return &list[i], nil
		}
	}
	return nil, fmt.Errorf("role %q not found after seeding", key)
}

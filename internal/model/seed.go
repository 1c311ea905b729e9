package model

import (
	"context"
	"strings"

	"tutorsite/internal/config"

	"github.com/sirupsen/logrus"
)

// AdminSeeder creates the bootstrap admin account.
type AdminSeeder interface {
	EnsureAdmin(ctx context.Context, name, email, password string) (bool, error)
}

// SeedAdmin ensures the admin configured through ADMIN_EMAIL/ADMIN_PASSWORD exists.
// An existing account with that email is left untouched.
func SeedAdmin(ctx context.Context, seeder AdminSeeder, cfg config.Config) error {
	if seeder == nil || !cfg.HasAdminSeed() {
		return nil
	}

	name := strings.TrimSpace(cfg.AdminName)
	if name == "" {
		name = "Administrator"
	}
	created, err := seeder.EnsureAdmin(ctx, name, cfg.AdminEmail, cfg.AdminPassword)
	if err != nil {
		return err
	}
	if created {
		logrus.WithField("email", strings.ToLower(strings.TrimSpace(cfg.AdminEmail))).Info("seeded admin account")
	}
	return nil
}

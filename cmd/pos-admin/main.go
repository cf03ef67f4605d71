// Command pos-admin creates back-office admins, or checks an admin's credentials with -check.
//
//	pos-admin -first Maria -last Santos -email maria@store.ph -password 's3cret-pass'
//	pos-admin -check -email maria@store.ph -password 's3cret-pass'
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/MikeMC777/pos-backoffice/internal/admin"
	"github.com/MikeMC777/pos-backoffice/internal/config"
	"github.com/MikeMC777/pos-backoffice/internal/database"
	"github.com/MikeMC777/pos-backoffice/internal/logger"
)

func main() {
	var (
		first    = flag.String("first", "", "first name")
		last     = flag.String("last", "", "last name")
		email    = flag.String("email", "", "email, used to sign in")
		password = flag.String("password", "", "password, at least 8 characters")
		check    = flag.Bool("check", false, "verify -email/-password instead of creating an admin")
	)
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := database.New(ctx, cfg)
	if err != nil {
		log.Fatal("database connect", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("database migrate", zap.Error(err))
	}

	svc := admin.NewService(admin.NewPGRepo(pool, cfg.DBStatementTimeout))

	if *check {
		a, err := svc.Authenticate(ctx, *email, *password)
		if err != nil {
			log.Error("credentials rejected", zap.String("email", *email), zap.Error(err))
			pool.Close()
			os.Exit(1)
		}
		log.Info("credentials ok", zap.Int64("admin_id", a.ID), zap.String("name", a.DisplayName()))
		return
	}

	a, err := svc.Create(ctx, admin.CreateAdminRequest{
		FirstName: *first,
		LastName:  *last,
		Email:     *email,
		Password:  *password,
	})
	if err != nil {
		log.Error("create admin", zap.Error(err))
		pool.Close()
		os.Exit(1)
	}
	log.Info("admin created", zap.Int64("admin_id", a.ID), zap.String("email", a.Email))
}

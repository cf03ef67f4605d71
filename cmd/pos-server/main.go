// @title           POS Back Office API
// @version         1.0
// @description     Inventory, customers, orders and reporting for a point-of-sale back office.
// @BasePath        /
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/MikeMC777/pos-backoffice/docs"
	"github.com/MikeMC777/pos-backoffice/internal/admin"
	"github.com/MikeMC777/pos-backoffice/internal/audit"
	"github.com/MikeMC777/pos-backoffice/internal/catalog"
	"github.com/MikeMC777/pos-backoffice/internal/config"
	"github.com/MikeMC777/pos-backoffice/internal/customer"
	"github.com/MikeMC777/pos-backoffice/internal/database"
	"github.com/MikeMC777/pos-backoffice/internal/healthcheck"
	"github.com/MikeMC777/pos-backoffice/internal/idempotency"
	"github.com/MikeMC777/pos-backoffice/internal/logger"
	"github.com/MikeMC777/pos-backoffice/internal/order"
	"github.com/MikeMC777/pos-backoffice/internal/report"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.New(ctx, cfg)
	if err != nil {
		log.Fatal("database connect", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		log.Fatal("database migrate", zap.Error(err))
	}

	catalogRepo := catalog.NewPGRepo(pool, cfg.DBStatementTimeout)
	customerRepo := customer.NewPGRepo(pool, cfg.DBStatementTimeout)
	adminRepo := admin.NewPGRepo(pool, cfg.DBStatementTimeout)
	orderRepo := order.NewPGRepo(pool, cfg.DBStatementTimeout)

	recorder := audit.NewRecorder(audit.NewPGStore(pool), log.Named("audit"), cfg.AuditWriteTimeout)

	var opts []order.Option
	if cfg.RedisURL != "" {
		store, err := idempotency.NewRedisStore(cfg.RedisURL, cfg.IdempotencyTTL)
		if err != nil {
			log.Fatal("redis connect", zap.Error(err))
		}
		defer func() { _ = store.Close() }()
		opts = append(opts, order.WithIdempotency(store))
		log.Info("idempotency keys enabled", zap.Duration("ttl", cfg.IdempotencyTTL))
	}

	engine := order.NewEngine(orderRepo, catalogRepo, customerRepo, adminRepo, recorder, log.Named("order"), opts...)
	reader := report.NewReader(report.OpenDB(pool), cfg.DBStatementTimeout)

	checker := healthcheck.New(pool, log.Named("health"), 10*time.Second)
	go checker.Run(ctx)

	lis, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		log.Fatal("grpc health listen", zap.Error(err))
	}
	grpcSrv := checker.Serve(lis)
	log.Info("grpc health listening", zap.String("addr", cfg.GRPCHealthAddr))

	router := newRouter(deps{
		orders:    engine,
		catalog:   catalogRepo,
		customers: customerRepo,
		admins:    admin.NewService(adminRepo),
		audit:     recorder,
		reports:   reader,
		health:    checker,
		log:       log,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("pos-server listening", zap.String("addr", cfg.HTTPAddr), zap.String("env", cfg.AppEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", zap.Error(err))
	}
	grpcSrv.GracefulStop()
	recorder.Close()
}

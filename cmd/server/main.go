package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cornerconsole/config"
	"cornerconsole/internal/auth"
	"cornerconsole/internal/database"
	"cornerconsole/internal/repository"
	"cornerconsole/internal/router"
	"cornerconsole/internal/scheduler"
	"cornerconsole/internal/service"
	"cornerconsole/pkg/gateway"

	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()
	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	if cfg.Database.Seed {
		if err := database.Seed(db); err != nil {
			log.Fatalf("seed: %v", err)
		}
		if cfg.Server.Env != "production" {
			logDevTokens(db, &cfg.JWT)
		}
	}

	var gw gateway.Gateway
	if cfg.Stripe.SecretKey != "" {
		gw = gateway.NewStripe(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret, cfg.Stripe.Timeout)
	} else {
		log.Printf("[gateway] STRIPE_SECRET_KEY not set, using in-memory stub")
		gw = gateway.NewStub()
	}

	engine := router.Setup(cfg, db, gw)

	// Background sweeps share the repositories the HTTP layer uses.
	userRepo := repository.NewUserRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	rentalRepo := repository.NewRentalRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	webhookRepo := repository.NewWebhookEventRepository(db)
	rentalSvc := service.NewRentalService(db, rentalRepo, inventoryRepo)
	paymentSvc := service.NewPaymentService(db, paymentRepo, rentalRepo, userRepo, webhookRepo, gw, &cfg.Payment)
	sweepSvc := service.NewSweepService(rentalRepo, paymentRepo, rentalSvc, paymentSvc, nil, cfg.Payment.CheckoutExpiry)

	sweepCtx, stopSweeps := context.WithCancel(context.Background())
	sched := scheduler.New(sweepSvc)
	sched.Start(sweepCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	stopSweeps()
	sched.Wait()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	fmt.Println("server stopped")
}

// logDevTokens prints a token per seeded account. There is no login endpoint
// in this service, tokens are minted out of band, so without this a fresh dev
// database has no way to call the authenticated routes.
func logDevTokens(db *gorm.DB, cfg *config.JWTConfig) {
	users := repository.NewUserRepository(db)
	for _, email := range []string{"admin@cornerconsole.in", "demo@cornerconsole.in"} {
		u, err := users.GetByEmail(email)
		if err != nil {
			continue
		}
		token, err := auth.GenerateToken(cfg, u.ID, u.Email, u.Role)
		if err != nil {
			log.Printf("[seed] could not mint token for %s: %v", email, err)
			continue
		}
		log.Printf("[seed] dev token for %s: %s", email, token)
	}
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"hoteldesk-backend/config"
	"hoteldesk-backend/logger"
	"hoteldesk-backend/routes"
	"hoteldesk-backend/services"
	"hoteldesk-backend/utils"
)

func main() {
	_ = godotenv.Load()

	log, err := logger.New(utils.EnvOrDefault("LOG_LEVEL", "info"))
	if err != nil {
		log = logger.Default()
	}
	defer func() { _ = log.Sync() }()

	db, err := config.ConnectDatabase(log)
	if err != nil {
		log.Fatalw("database connection failed", "error", err)
	}
	if err := config.AutoMigrate(db); err != nil {
		log.Fatalw("migration failed", "error", err)
	}
	if err := config.SeedDatabase(db, log); err != nil {
		log.Fatalw("seeding failed", "error", err)
	}

	taxes := services.NewTaxService(db)
	accounts := services.NewAccountService(db, log)
	notifier := services.NewNotificationService(db, log)
	bookings := services.NewBookingService(db, taxes, accounts, notifier, log)
	invoices := services.NewInvoiceService(db, accounts, notifier, log)
	payments := services.NewPaymentService(db, accounts, log)
	expenses := services.NewExpenseService(db, accounts, log)
	inventory := services.NewInventoryService(db, log)

	ctrls := routes.NewControllers(db, log, taxes, accounts, bookings, invoices, payments, expenses, inventory)
	router := routes.SetupRouter(ctrls, log)

	addr := ":" + utils.EnvOrDefault("PORT", "8080")
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Infow("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Infow("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("forced shutdown", "error", err)
	}
	log.Infow("server stopped")
}

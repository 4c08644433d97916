package main

import (
	"context"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mun-hub/munhub/internal/api"
	"github.com/mun-hub/munhub/internal/config"
	"github.com/mun-hub/munhub/internal/logging"
	"github.com/mun-hub/munhub/internal/payment"
	"github.com/mun-hub/munhub/internal/storage"
	"github.com/mun-hub/munhub/internal/sweeper"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	setupConfig()
	logging.Init()

	cfg := config.New()
	logrus.Debugf("config: %+v", cfg)

	db, err := gorm.Open(postgres.Open(cfg.PostgresDSN), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}

	store := storage.New(db)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	initCtx, migrateCancel := context.WithTimeout(ctx, 10*time.Second)
	defer migrateCancel()

	if err := store.Migrate(initCtx); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	clock := clockwork.NewRealClock()

	var processor payment.Processor
	if cfg.PaymentGatewayHost != "" {
		processor = payment.NewGatewayClient(cfg)
	} else {
		processor = &payment.Stub{}
	}

	service := api.NewService(cfg, store, processor, clock)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.POST("/api/users", service.HandleSaveUser())
	e.GET("/api/events", service.HandleGetEvents())
	e.GET("/api/events/:id", service.HandleGetEvent())
	e.GET("/api/events/:id/announcements", service.HandleGetAnnouncements())
	e.POST("/api/events/:id/registrations", service.HandleSubmitRegistration())
	e.GET("/api/leaderboard", service.HandleGetLeaderboard())
	e.GET("/api/users/:id/certificates", service.HandleGetUserCertificates())
	e.GET("/api/users/:id/badges", service.HandleGetUserBadges())
	e.GET("/api/users/:id/registrations", service.HandleGetUserRegistrations())
	e.GET("/api/users/:id/events/:munID/registration", service.HandleGetUserRegistration())
	e.POST("/api/registrations/:id/withdraw", service.HandleWithdraw())
	e.POST("/api/registrations/:id/payments", service.HandleRecordPayment())
	e.POST("/api/registrations/:id/paper", service.HandleUploadPaper())
	e.POST("/api/promo/validate", service.HandleValidatePromo())

	org := e.Group("/api/organizer", service.RequireOrganizer())
	org.GET("/registrations", service.HandleListRegistrations())
	org.POST("/registrations/:id/approve", service.HandleApprove())
	org.POST("/registrations/:id/reject", service.HandleReject())
	org.POST("/registrations/:id/country", service.HandleAssignCountry())
	org.GET("/committees/:id/countries", service.HandleGetCountryMatrix())
	org.POST("/committees/:id/auto-assign", service.HandleAutoAssign())

	sw := sweeper.New(cfg, store, clock)

	wg := sync.WaitGroup{}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := e.Start(cfg.ListenAddress); err != nil {
			logrus.Infof("server stopped: %v", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		sw.Run(ctx)
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.Errorf("shutting down server: %v", err)
	}

	logrus.Info("waiting for services to finish")
	wg.Wait()
}

func setupConfig() {
	viper.SetDefault("payment_gateway_host", "")
	viper.BindEnv("payment_gateway_key")
	config.SetupCommon()
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"craft-storefront/internal/api"
	apiMiddleware "craft-storefront/internal/api/middleware"
	"craft-storefront/internal/config"
	emailSvc "craft-storefront/pkg/email"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. --- Configuration ---
	// A .env file is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Could not read .env: %v", err)
	}
	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logrus.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. --- Email ---
	templates, err := emailSvc.NewTemplateManager()
	if err != nil {
		log.Fatalf("Failed to parse email templates: %v", err)
	}
	var emailer emailSvc.ServiceInterface = emailSvc.LogSender{Log: logrus.WithField("component", "email")}
	if cfg.AWSRegion != "" && cfg.EmailFrom != "" {
		sender, err := emailSvc.NewSESV2Sender(ctx, cfg.AWSRegion, cfg.EmailFrom)
		if err != nil {
			log.Fatalf("Failed to set up SES: %v", err)
		}
		emailer = sender
	}

	// 3. --- Rate limiting ---
	var limiter *apiMiddleware.RateLimiter
	if cfg.RateLimitRPS > 0 {
		limiter = apiMiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		limiter.StartCleanup(ctx, 10*time.Minute)
	}

	// 4. --- Modules and routes ---
	e, err := api.NewServer(cfg, api.Deps{
		Emailer:     emailer,
		Templates:   templates,
		RateLimiter: limiter,
	})
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}
	e.Use(middleware.Logger())

	// 5. --- Start Server with graceful shutdown logic ---
	go func() {
		if err := e.Start(":" + cfg.ServerPort); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal("shutting down the server an error occurred:", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		e.Logger.Fatal("Server forced to shutdown:", err)
	}
	log.Println("Server exiting")
}

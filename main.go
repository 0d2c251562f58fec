// Package main library API.
//
// @title           Library API
// @version         1.0
// @description     Library management service (books, loans, overdue reminders).
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <JWT>
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/robfig/cron/v3"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/NirsoItu/api-biblioteca/app/echoServer"
	authctrl "github.com/NirsoItu/api-biblioteca/app/echoServer/controller/auth"
	bookctrl "github.com/NirsoItu/api-biblioteca/app/echoServer/controller/book"
	loanctrl "github.com/NirsoItu/api-biblioteca/app/echoServer/controller/loan"
	"github.com/NirsoItu/api-biblioteca/app/echoServer/validation"
	"github.com/NirsoItu/api-biblioteca/config"
	bookrepo "github.com/NirsoItu/api-biblioteca/repository/book"
	loanrepo "github.com/NirsoItu/api-biblioteca/repository/loan"
	"github.com/NirsoItu/api-biblioteca/repository/mailgw"
	userrepo "github.com/NirsoItu/api-biblioteca/repository/user"
	authsvc "github.com/NirsoItu/api-biblioteca/service/auth"
	booksvc "github.com/NirsoItu/api-biblioteca/service/book"
	loansvc "github.com/NirsoItu/api-biblioteca/service/loan"
	"github.com/NirsoItu/api-biblioteca/util/database"
)

// overdueSweepSpec fires every day at midnight.
const overdueSweepSpec = "0 0 * * *"

func main() {

	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	// DB
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.MigrateUp(db, cfg.MigrationsPath); err != nil {
		log.Error("db migrate failed", "err", err)
		os.Exit(1)
	}

	// repos
	br := bookrepo.New(db)
	lr := loanrepo.New(db)
	ur := userrepo.New(db)
	mg := mailgw.NewHTTP(cfg.MailAPIURL, cfg.MailAPIKey)

	// services
	bs := booksvc.New(br)
	ls := loansvc.New(lr)
	as := authsvc.New(ur, cfg.JWTSecret)
	overdue := loansvc.NewNotifier(ls, mg, cfg.LateLoansMessage)

	// daily overdue sweep
	cr := cron.New()
	if _, err := cr.AddFunc(overdueSweepSpec, func() {
		sent, err := overdue.Sweep(context.Background())
		if err != nil {
			log.Error("overdue sweep failed", "err", err)
			return
		}
		log.Info("overdue sweep done", "reminders_sent", sent)
	}); err != nil {
		log.Error("cron setup failed", "err", err)
		os.Exit(1)
	}
	cr.Start()

	// controllers
	v := validator.New()
	authC := &authctrl.Controller{Svc: as, V: v, Log: log}
	bookC := &bookctrl.Controller{Svc: bs, Loans: ls, V: v, Log: log}
	loanC := &loanctrl.Controller{Svc: ls, Books: bs, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "ok",
			"message": "Service is healthy and connected",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Auth:      authC,
		Book:      bookC,
		Loan:      loanC,
		JWTSecret: cfg.JWTSecret,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	log.Info("starting server", "port", port, "env", cfg.Env)

	go func() {
		if err := e.Start(":" + port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", "err", err)
	}
	// Let a running sweep finish before the db closes.
	<-cr.Stop().Done()
}

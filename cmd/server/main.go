package main // Entry point package

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/spf13/pflag"

	"github.com/iliyamo/cinema-admin/internal/config"
	"github.com/iliyamo/cinema-admin/internal/database"
	"github.com/iliyamo/cinema-admin/internal/handler"
	"github.com/iliyamo/cinema-admin/internal/mailer"
	"github.com/iliyamo/cinema-admin/internal/middleware"
	"github.com/iliyamo/cinema-admin/internal/queue"
	"github.com/iliyamo/cinema-admin/internal/repository"
	"github.com/iliyamo/cinema-admin/internal/router"
	"github.com/iliyamo/cinema-admin/internal/service"
)

func main() {
	configPath := pflag.String("config", os.Getenv("CINEMA_CONFIG"), "YAML file with default environment values")
	envFile := pflag.String("env-file", ".env", "dotenv file to load if present")
	pflag.Parse()

	logger := log.New("cinema")
	logger.SetHeader(`{"time":"${time_rfc3339}","level":"${level}","prefix":"${prefix}","file":"${short_file}","line":"${line}"}`)

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Fatalf("load %s: %v", *envFile, err)
	}
	if *configPath != "" {
		if err := config.LoadFile(*configPath); err != nil {
			logger.Fatal(err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal(err)
	}
	logger.SetLevel(logLevel(cfg.LogLevel))

	db, err := database.Open(cfg.DB)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unavailable: in-process rate limiting, no response cache")
	} else {
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ---- Repositories and services ----
	movies := repository.NewMovieRepo(db)
	showtimes := repository.NewShowtimeRepo(db)
	tickets := repository.NewTicketRepo(db)
	transactions := repository.NewTransactionRepo(db)
	users := repository.NewUserRepo(db)

	broker := config.LoadBrokerConfig()
	bookings := &service.BookingService{
		Transactions: transactions,
		Capacity:     tickets,
		Showtimes:    showtimes,
		Logger:       logger,
		Location:     cfg.Location,
		TodayOnly:    cfg.SalesTodayOnly,
	}
	if broker.URL != "" {
		bookings.Events = &service.AMQPPublisher{URL: broker.URL}
	}
	schedule := &service.ScheduleService{Movies: movies, Showtimes: showtimes, Location: cfg.Location}
	responses := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	capacity := &service.CapacityService{Rows: tickets, Transactions: transactions, Showtimes: showtimes}
	auth := &service.AuthService{
		Users:      users,
		Secret:     cfg.JWTSecret,
		TTL:        cfg.SessionTTL,
		BcryptCost: cfg.BcryptCost,
		Cache:      responses,
		Logger:     logger,
	}
	if smtp := config.LoadSMTPConfig(); smtp.Host != "" {
		auth.Mailer = mailer.New(smtp.Host, smtp.Port, smtp.Username, smtp.Password, smtp.Sender)
	}

	consumerDone := make(chan struct{})
	if broker.AuditConsumer && broker.URL != "" {
		consumer := &queue.AuditConsumer{URL: broker.URL, Path: broker.AuditLogPath, Logger: logger}
		go func() {
			defer close(consumerDone)
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Errorf("audit consumer: %v", err)
			}
		}()
	} else {
		close(consumerDone)
	}

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Logger = logger
	e.Use(echomw.RequestID())
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			j := log.JSON{"id": v.RequestID, "method": v.Method, "uri": v.URI, "status": v.Status, "latency": v.Latency.String()}
			if v.Error != nil {
				j["error"] = v.Error.Error()
				logger.Errorj(j)
				return nil
			}
			logger.Infoj(j)
			return nil
		},
	}))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	router.RegisterRoutes(e)
	router.RegisterAuth(e, &handler.AuthHandler{Auth: auth, SecureCookies: cfg.SecureCookies}, cfg.JWTSecret)
	router.RegisterAdmin(e, router.Admin{
		Dashboard: &handler.DashboardHandler{
			Movies: movies, Showtimes: showtimes, Tickets: tickets,
			Transactions: transactions, Users: users, Schedule: schedule,
		},
		Movies:       &handler.MovieHandler{Movies: movies},
		Showtimes:    &handler.ShowtimeHandler{Showtimes: showtimes, Schedule: schedule, Inventory: bookings, Location: cfg.Location},
		Tickets:      &handler.TicketHandler{Tickets: tickets, Capacity: capacity},
		Transactions: &handler.TransactionHandler{Transactions: transactions, Bookings: bookings, Location: cfg.Location},
		Users:        &handler.UserHandler{Users: users, Accounts: auth},
	}, cfg.JWTSecret, responses.Middleware())

	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 30 * time.Second
	e.Server.IdleTimeout = time.Minute

	addr := ":" + cfg.Port
	go func() {
		logger.Infof("listening on %s (env=%s, driver=%s)", addr, cfg.Env, cfg.DB.Driver)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal(err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("shutdown: %v", err)
	}
	logger.Info("completing background tasks")
	auth.Wait()
	<-consumerDone
}

func logLevel(s string) log.Lvl {
	switch strings.ToLower(s) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	}
	return log.INFO
}

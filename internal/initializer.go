package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"mysocial-server/internal/managers"
	"mysocial-server/internal/reaper"
	"mysocial-server/internal/routing"
	"mysocial-server/internal/tokens"
)

const shutdownTimeout = 10 * time.Second

// Init loads the configuration, connects the managers and runs the HTTP server
// until the process receives an interrupt.
func Init() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}
	initializeLogging()

	pool, err := initializePool()
	if err != nil {
		logrus.WithError(err).Fatal("Error connecting to database")
	}
	defer pool.Close()

	databaseMgr := managers.NewDatabaseManager(pool)

	jwtMgr, err := managers.NewJWTManagerFromFile()
	if err != nil {
		logrus.WithError(err).Fatal("Error initializing JWT manager")
	}

	mailMgr := managers.NewMailManager()

	mediaMgr, err := managers.NewMediaManager()
	if err != nil {
		logrus.WithError(err).Fatal("Error initializing media manager")
	}

	tokenIssuer := tokens.NewIssuer(durationFromEnv("TOKEN_TTL", tokens.DefaultTTL))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	accountReaper := reaper.NewWithClock(pool, durationFromEnv("REAPER_INTERVAL", reaper.DefaultInterval), time.Now)
	accountReaper.Start(ctx)

	router := routing.InitRouter(databaseMgr, mailMgr, jwtMgr, mediaMgr, tokenIssuer)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		logrus.WithField("port", port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).Fatal("Error starting server")
		}
	}()

	<-ctx.Done()
	logrus.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("Error shutting down server")
	}
}

func initializeLogging() {
	level, err := logrus.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

func initializePool() (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s",
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"), os.Getenv("DB_NAME"))

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	config.MinConns = 2
	config.MaxConns = 10

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return pool, nil
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}

	duration, err := time.ParseDuration(value)
	if err != nil {
		logrus.WithError(err).WithField("key", key).Warn("Invalid duration, using fallback")
		return fallback
	}

	return duration
}

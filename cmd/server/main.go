package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"replate/internal/app/api"
	"replate/internal/app/notifier"
	"replate/internal/common/logger"
	"replate/internal/config"
	"replate/internal/connections/database"
	"replate/internal/connections/rabbitmq"
)

func main() {
	mode := flag.String("mode", "api", "api | notifier")
	cfgPath := flag.String("config", "config.yml", "path to YAML config")
	port := flag.Int("port", 0, "api: override http port from config")
	flag.Parse()

	lg := logger.New(*mode)
	defer lg.Sync()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		lg.Error("config_load_failed", zap.Error(err))
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		lg.Error("db_connect_failed", zap.Error(err))
		os.Exit(1)
	}
	defer db.Close()
	lg.Info("postgres_connected",
		zap.String("host", cfg.Database.Host), zap.String("database", cfg.Database.Database))

	mq, err := rabbitmq.Dial(cfg.RabbitMQ)
	if err != nil {
		lg.Error("rabbitmq_connect_failed", zap.Error(err))
		os.Exit(1)
	}
	defer mq.Close()
	if err := mq.Ping(); err != nil {
		lg.Error("rabbitmq_ping_failed", zap.Error(err))
		os.Exit(1)
	}
	if err := mq.DeclareTopology(); err != nil {
		lg.Error("rabbitmq_declare_failed", zap.Error(err))
		os.Exit(1)
	}
	lg.Info("rabbitmq_connected", zap.String("host", cfg.RabbitMQ.Host))

	switch *mode {
	case "api":
		httpPort := cfg.HTTP.Port
		if *port != 0 {
			httpPort = *port
		}
		lg.Info("service_started", zap.String("mode", "api"), zap.Int("port", httpPort))
		if err := api.Run(ctx, httpPort, db, mq, lg); err != nil {
			lg.Error("fatal", zap.Error(err))
			os.Exit(1)
		}
	case "notifier":
		lg.Info("service_started", zap.String("mode", "notifier"))
		if err := notifier.Run(ctx, db, mq, lg); err != nil {
			lg.Error("fatal", zap.Error(err))
			os.Exit(1)
		}
	default:
		fmt.Fprintln(os.Stderr, "--mode must be one of: api | notifier")
		os.Exit(2)
	}
}

package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"goldpricebot/internal/bot"
	"goldpricebot/internal/config"
	"goldpricebot/internal/logger"
)

func main() {
	cfgPath := flag.String("config", config.DefaultConfigPath(), "path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	logger.Init("info", cfg.Debug)

	if cfg.BotToken == "" {
		logrus.Fatalf("missing bot token (set BOT_TOKEN or bot_token in %s)", *cfgPath)
	}

	app, err := bot.New(cfg)
	if err != nil {
		logrus.Fatalf("init error: %v", err)
	}
	defer app.Close()

	// Graceful stop
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logrus.Info("shutting down...")
		app.Close()
		os.Exit(0)
	}()

	if err := app.Run(); err != nil {
		logrus.Fatalf("run error: %v", err)
	}
}

// One-shot report: fetch, diff against the cached snapshot, print the
// report to stdout. Useful for cron jobs and for poking the pipeline
// without a bot token.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"goldpricebot/internal/cache"
	"goldpricebot/internal/config"
	"goldpricebot/internal/logger"
	"goldpricebot/internal/prices"
	"goldpricebot/internal/sources"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (optional)")
	timeout := flag.Duration("timeout", 60*time.Second, "overall run deadline")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logrus.Fatalf("config error: %v", err)
	}
	logger.Init("warn", cfg.Debug)

	store := cache.NewTiered(cfg.Cache)
	defer store.Close()
	svc := prices.NewService(sources.NewManager(), store)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	text, err := svc.BuildReport(ctx)
	if err != nil {
		logrus.Errorf("report failed: %v", err)
		os.Exit(1)
	}
	fmt.Println(text)
}

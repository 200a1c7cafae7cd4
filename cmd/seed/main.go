// Command seed replaces the article catalog with the built-in sample posts.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/miniblog/internal/logging"
	"github.com/dmitrijs2005/miniblog/internal/server"
	"github.com/dmitrijs2005/miniblog/internal/server/config"
	"github.com/dmitrijs2005/miniblog/internal/server/services"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	logger, err := logging.NewJSON(os.Stdout, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("logger init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, rm := server.NewStore(cfg)
	defer db.Close()

	as := services.NewArticleService(db, rm, services.Guard{}, logger)
	list, err := as.Seed(ctx)
	if err != nil {
		return err
	}

	logger.Info(ctx, "catalog seeded", "posts", len(list))
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/redis/go-redis/v9"

	"minicart/internal/config"
	"minicart/internal/domain"
	"minicart/internal/store"
)

// Seeds the snapshot store with a cart: a built-in demo cart, or a feed file
// given with -file (same {"items":[...]} shape as the remote feed).
func main() {
	var filePath string
	flag.StringVar(&filePath, "file", "", "Path to a cart feed JSON file; omit for demo items")
	flag.Parse()

	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[seed] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	snapshot, err := loadSnapshot(filePath)
	if err != nil {
		logger.Fatalf("load seed data: %v", err)
	}

	ctx := context.Background()
	st, closeStore, err := buildStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("init store: %v", err)
	}
	defer closeStore()

	if err := st.Save(ctx, snapshot); err != nil {
		logger.Fatalf("save snapshot: %v", err)
	}

	logger.Printf("seeded %d items under %q", len(snapshot.Items), cfg.CartKey)
}

func loadSnapshot(filePath string) (*domain.Snapshot, error) {
	if filePath == "" {
		return demoSnapshot(), nil
	}

	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	var snapshot domain.Snapshot
	if err := json.NewDecoder(f).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode feed file: %w", err)
	}
	for i := range snapshot.Items {
		if snapshot.Items[i].ID == "" {
			return nil, fmt.Errorf("item %d has no id", i)
		}
		if snapshot.Items[i].Quantity < 1 {
			snapshot.Items[i].Quantity = 1
		}
	}
	return &snapshot, nil
}

func demoSnapshot() *domain.Snapshot {
	return &domain.Snapshot{Items: []domain.LineItem{
		{
			ID:             "demo-shirt",
			Title:          "Demo T-Shirt",
			ImageURL:       "https://placehold.co/96x96?text=Shirt",
			UnitPriceCents: 150000,
			Quantity:       1,
		},
		{
			ID:             "demo-mug",
			Title:          "Demo Mug",
			ImageURL:       "https://placehold.co/96x96?text=Mug",
			UnitPriceCents: 85000,
			Quantity:       2,
		},
	}}
}

func buildStore(ctx context.Context, cfg config.Config, logger *log.Logger) (store.Store, func(), error) {
	switch cfg.StoreBackend {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		return store.NewRedis(client, cfg.CartKey, logger), func() { client.Close() }, nil
	case "postgres":
		pool, err := store.ConnectPostgres(ctx, cfg.DBConnString)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return store.NewPostgres(pool, cfg.CartKey, logger), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/sony/gobreaker/v2"

	"minicart/internal/domain"
	"minicart/internal/store"
)

// Source obtains the authoritative cart snapshot: the persisted copy wins,
// otherwise one fetch from the remote feed, persisted on success. A persisted
// snapshot is returned as-is, without any network access; once a local copy
// exists, remote updates are never observed.
type Source struct {
	store   store.Store
	client  *http.Client
	breaker *gobreaker.CircuitBreaker[*domain.Snapshot]
	url     string
	logger  *log.Logger
}

func New(st store.Store, feedURL string, logger *log.Logger) *Source {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Source{
		store:  st,
		client: &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker[*domain.Snapshot](gobreaker.Settings{
			Name: "cart-feed",
		}),
		url:    feedURL,
		logger: logger,
	}
}

// Obtain returns the cart snapshot. Any fetch or decode failure is returned
// after the single attempt; there is no retry. The breaker only
// short-circuits repeated failures, it never adds attempts.
func (s *Source) Obtain(ctx context.Context) (*domain.Snapshot, error) {
	snapshot, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	if snapshot != nil {
		return snapshot, nil
	}

	snapshot, err = s.breaker.Execute(func() (*domain.Snapshot, error) {
		return s.fetch(ctx)
	})
	if err != nil {
		s.logger.Printf("source: fetch %s failed: %v", s.url, err)
		return nil, fmt.Errorf("fetch cart feed: %w", err)
	}

	if err := s.store.Save(ctx, snapshot); err != nil {
		// The snapshot is still usable; persistence catches up on the next
		// mutation.
		s.logger.Printf("source: persist fetched snapshot failed: %v", err)
	}
	return snapshot, nil
}

func (s *Source) fetch(ctx context.Context) (*domain.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var snapshot domain.Snapshot
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	return sanitize(&snapshot), nil
}

// sanitize drops items the model cannot represent and floors quantities so
// the minimum-quantity invariant holds from the first render.
func sanitize(snapshot *domain.Snapshot) *domain.Snapshot {
	items := snapshot.Items[:0]
	for _, item := range snapshot.Items {
		if item.ID == "" {
			continue
		}
		if item.Quantity < 1 {
			item.Quantity = 1
		}
		items = append(items, item)
	}
	snapshot.Items = items
	return snapshot
}

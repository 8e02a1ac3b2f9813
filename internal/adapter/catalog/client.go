// Package catalog talks to the external read-only card catalog over its
// public REST API. The catalog owns all card data; this client only reads
// snapshots and never writes.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cardtienda/backend/internal/app/config"
	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/repository"
)

const (
	defaultRequestTimeout = 10 * time.Second
)

type Client interface {
	GetCardByID(ctx context.Context, cardID string) (*entity.Card, error)
	SearchCards(ctx context.Context, query string) ([]entity.Card, error)
}

type httpClient struct {
	baseURL string
	hc      *http.Client
}

func NewClient(cfg config.CatalogConfig) (Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("catalog base URL is not configured")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	return &httpClient{
		baseURL: cfg.BaseURL,
		hc:      &http.Client{Timeout: timeout},
	}, nil
}

func (c *httpClient) GetCardByID(ctx context.Context, cardID string) (*entity.Card, error) {
	if cardID == "" {
		return nil, fmt.Errorf("card ID cannot be empty")
	}

	endpoint := fmt.Sprintf("%s/cards/%s", c.baseURL, url.PathEscape(cardID))
	var card entity.Card
	if err := c.getJSON(ctx, endpoint, &card); err != nil {
		return nil, err
	}
	if !card.Valid() {
		return nil, fmt.Errorf("catalog returned an unusable card for id %s", cardID)
	}
	return &card, nil
}

func (c *httpClient) SearchCards(ctx context.Context, query string) ([]entity.Card, error) {
	endpoint := fmt.Sprintf("%s/cards/search?q=%s", c.baseURL, url.QueryEscape(query))

	// The catalog wraps search results in a data envelope.
	var payload struct {
		Data []entity.Card `json:"data"`
	}
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}

	cards := make([]entity.Card, 0, len(payload.Data))
	for _, card := range payload.Data {
		if card.Valid() {
			cards = append(cards, card)
		}
	}
	return cards, nil
}

func (c *httpClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to build catalog request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return repository.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("catalog returned unexpected status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

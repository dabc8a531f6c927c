// Package sync talks to the spreadsheet-backed remote endpoint. Push and
// pull are deliberately asymmetric: the endpoint drops CORS-style pushes
// into a void, so push never inspects the response, while pull fully
// validates what it fetched before handing it over.
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"lms-store-service/internal/domain"
)

// Connector implements the push/pull replication protocol against one
// configured URL.
type Connector struct {
	client *http.Client
	logger *zap.Logger
}

func NewConnector(client *http.Client, logger *zap.Logger) *Connector {
	if client == nil {
		client = http.DefaultClient
	}
	return &Connector{client: client, logger: logger}
}

// Push sends the whole aggregate as a text/plain POST body. The response
// status and body are ignored: the endpoint cannot be observed through
// this transport, so a dispatched request counts as success. Only a
// transport-level failure is reported.
func (c *Connector) Push(ctx context.Context, url string, agg domain.Aggregate) error {
	if url == "" {
		return domain.ErrNoSyncURL
	}

	body, err := json.Marshal(agg)
	if err != nil {
		return fmt.Errorf("marshal aggregate: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build push request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("push aggregate: %w", err)
	}
	// Response-blind: drain and close, never branch on the status.
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	c.logger.Debug("aggregate pushed", zap.Int("bytes", len(body)))
	return nil
}

// Pull fetches the remote aggregate. The body is accepted only when it
// decodes as JSON and carries a users or questions key; anything else is
// rejected so a broken endpoint cannot wipe the local store.
func (c *Connector) Pull(ctx context.Context, url string) (domain.Aggregate, error) {
	if url == "" {
		return domain.Aggregate{}, domain.ErrNoSyncURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("build pull request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("pull aggregate: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Aggregate{}, fmt.Errorf("read pull response: %w", err)
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return domain.Aggregate{}, fmt.Errorf("%w: %v", domain.ErrBadRemotePayload, err)
	}
	if _, ok := keys["users"]; !ok {
		if _, ok := keys["questions"]; !ok {
			return domain.Aggregate{}, domain.ErrBadRemotePayload
		}
	}

	var agg domain.Aggregate
	if err := json.Unmarshal(raw, &agg); err != nil {
		return domain.Aggregate{}, fmt.Errorf("%w: %v", domain.ErrBadRemotePayload, err)
	}

	c.logger.Debug("aggregate pulled",
		zap.Int("users", len(agg.Users)),
		zap.Int("questions", len(agg.Questions)),
		zap.Int("lessons", len(agg.Lessons)))
	return agg, nil
}

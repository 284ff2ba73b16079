package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/dmitrijs2005/modtoolkit/internal/client/models"
	"github.com/dmitrijs2005/modtoolkit/internal/common"
)

// Watch opens the server-sent-events stream for the signed-in user and
// delivers full collection snapshots on the returned channel, in the order
// the server sent them. The first snapshot arrives immediately on connect.
//
// Dropped connections are retried with capped fibonacci backoff until ctx is
// canceled; each successful reconnect yields a fresh full snapshot, so no
// change is ever missed. The channel is closed when ctx ends or the token
// can no longer be refreshed.
func (c *Client) Watch(ctx context.Context) (<-chan []*models.Tool, error) {
	access, _ := c.tokens()
	if access == "" {
		return nil, ErrUnauthorized
	}

	out := make(chan []*models.Tool)

	go func() {
		defer close(out)

		backoff := retry.WithCappedDuration(30*time.Second, retry.NewFibonacci(time.Second))

		_ = retry.Do(ctx, backoff, func(ctx context.Context) error {
			err := c.streamOnce(ctx, out)
			if err == nil || ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, ErrUnauthorized) {
				// One refresh attempt; a stale pair ends the stream.
				if rerr := c.Refresh(ctx); rerr != nil {
					return nil
				}
			}
			return retry.RetryableError(err)
		})
	}()

	return out, nil
}

// streamOnce connects and forwards snapshots until the stream breaks or ctx
// is canceled. A nil return means a clean shutdown.
func (c *Client) streamOnce(ctx context.Context, out chan<- []*models.Tool) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tools/watch", nil)
	if err != nil {
		return err
	}
	access, _ := c.tokens()
	req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+access)
	req.Header.Set("Accept", "text/event-stream")

	// The stream outlives any per-request timeout.
	streamClient := &http.Client{}
	resp, err := streamClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("watch: unexpected status %d", resp.StatusCode)
	}

	rd := bufio.NewReader(resp.Body)
	var data strings.Builder

	for {
		line, err := rd.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: stream closed", ErrUnavailable)
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case strings.HasPrefix(line, "data: "):
			data.WriteString(strings.TrimPrefix(line, "data: "))
		case line == "" && data.Len() > 0:
			var snapshot []*models.Tool
			if err := json.Unmarshal([]byte(data.String()), &snapshot); err != nil {
				return fmt.Errorf("watch: bad snapshot payload: %w", err)
			}
			data.Reset()
			if snapshot == nil {
				snapshot = []*models.Tool{}
			}
			select {
			case out <- snapshot:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

package store

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/yhamdani/locadrive/internal/docstore"
)

// Subscribe opens a server-sent-event stream on a collection. Every event
// carries the full current result set. Stream failures are reported once
// through onError and the subscription goes dead; there is no reconnect.
// The returned function tears the stream down, after which neither callback
// fires again.
func (c *Client) Subscribe(collection string, q docstore.Query, onData func(docstore.Snapshot), onError func(error)) docstore.UnsubscribeFunc {
	ctx, cancel := context.WithCancel(context.Background())

	// Gate guaranteeing callback silence once Unsubscribe returns.
	var mu sync.Mutex
	closed := false
	deliver := func(fn func()) {
		mu.Lock()
		defer mu.Unlock()
		if !closed {
			fn()
		}
	}

	go c.stream(ctx, collection, q,
		func(s docstore.Snapshot) { deliver(func() { onData(s) }) },
		func(err error) { deliver(func() { onError(err) }) },
	)

	return func() {
		mu.Lock()
		closed = true
		mu.Unlock()
		cancel()
	}
}

func (c *Client) stream(ctx context.Context, collection string, q docstore.Query, onData func(docstore.Snapshot), onError func(error)) {
	path := "/api/collections/" + url.PathEscape(collection) + "/watch" + queryString(q)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		onError(err)
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			onError(err)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		onError(&APIError{Status: resp.StatusCode, Message: "watch stream refused"})
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	event := ""
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			payload := strings.TrimPrefix(line, "data: ")
			if event == "error" {
				onError(fmt.Errorf("watch %s: %s", collection, payload))
				return
			}
			var snap docstore.Snapshot
			if err := json.Unmarshal([]byte(payload), &snap); err != nil {
				c.log.Warn("dropping malformed snapshot event", zap.String("collection", collection), zap.Error(err))
				continue
			}
			onData(snap)
		case line == "":
			event = ""
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		onError(err)
	}
}

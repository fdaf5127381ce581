package storefront

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/net/websocket"

	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

// SalesSource reads the public sales feed.
type SalesSource interface {
	RecentSales(ctx context.Context) ([]pharmacy.Sale, error)
}

// FeedUpdate is one push to a sales-feed subscriber.
type FeedUpdate struct {
	Type  string          `json:"type"` // "sales" or "error"
	Sales []pharmacy.Sale `json:"sales,omitempty"`
	Error string          `json:"error,omitempty"`
}

// Feed streams the recent-sales list to websocket subscribers, pushing a
// fresh snapshot on connect and then on every interval tick.
type Feed struct {
	source   SalesSource
	interval time.Duration
	logger   *logging.Logger
}

// NewFeed creates a sales feed. Interval zero falls back to five seconds,
// matching the storefront's refresh cadence.
func NewFeed(source SalesSource, interval time.Duration, logger *logging.Logger) *Feed {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Feed{source: source, interval: interval, logger: logger}
}

// HandleWebSocket upgrades to WebSocket and streams sales snapshots.
func (f *Feed) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.Handler(func(conn *websocket.Conn) {
		f.serveWS(conn, r)
	}).ServeHTTP(w, r)
}

func (f *Feed) serveWS(conn *websocket.Conn, r *http.Request) {
	ctx := r.Context()
	f.logger.Debug("sales feed: connection opened")

	// Receive loop only notices client departure; subscribers never send
	// anything we act on.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			var discard string
			if err := websocket.Message.Receive(conn, &discard); err != nil {
				return
			}
		}
	}()

	if !f.push(ctx, conn) {
		return
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-closed:
			f.logger.Debug("sales feed: connection closed")
			return
		case <-ticker.C:
			if !f.push(ctx, conn) {
				return
			}
		}
	}
}

func (f *Feed) push(ctx context.Context, conn *websocket.Conn) bool {
	sales, err := f.source.RecentSales(ctx)
	if err != nil {
		f.logger.Warn("sales feed: upstream fetch failed", "error", err)
		return websocket.JSON.Send(conn, FeedUpdate{Type: "error", Error: "sales feed unavailable"}) == nil
	}
	return websocket.JSON.Send(conn, FeedUpdate{Type: "sales", Sales: sales}) == nil
}

package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vikram583135/platepal2.o-sub000/internal/retry"
)

// ReconnectPolicy spaces out reconnects to the push channel.
var ReconnectPolicy = retry.Policy{BaseDelay: 500 * time.Millisecond, Exponential: true, MaxDelay: 30 * time.Second}

type WSConfig struct {
	URL   string
	Token string
	// Reconnect controls the delay between connection attempts; MaxAttempts
	// is ignored, the listener reconnects until its context ends.
	Reconnect retry.Policy
}

// WSListener reads push events from a websocket and hands them to a
// Handler, reconnecting whenever the connection drops.
type WSListener struct {
	cfg     WSConfig
	handler Handler
	dialer  websocket.Dialer
	logger  *zap.SugaredLogger
}

func NewWSListener(cfg WSConfig, handler Handler, logger *zap.SugaredLogger) *WSListener {
	if cfg.Reconnect.BaseDelay == 0 {
		cfg.Reconnect = ReconnectPolicy
	}
	return &WSListener{
		cfg:     cfg,
		handler: handler,
		dialer:  websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		logger:  logger,
	}
}

// Run blocks until ctx is done.
func (l *WSListener) Run(ctx context.Context) error {
	failures := 0
	for {
		connected, err := l.session(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			failures = 0
		}
		failures++

		delay := l.cfg.Reconnect.Delay(failures)
		l.logger.Warnw("realtime connection lost, reconnecting", "url", l.cfg.URL, "attempt", failures, "delay", delay, "error", err)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

// session runs one connection until it fails. connected reports whether
// the handshake succeeded.
func (l *WSListener) session(ctx context.Context) (connected bool, err error) {
	header := http.Header{}
	if l.cfg.Token != "" {
		header.Set("Authorization", "Bearer "+l.cfg.Token)
	}

	conn, _, err := l.dialer.DialContext(ctx, l.cfg.URL, header)
	if err != nil {
		return false, fmt.Errorf("failed to dial realtime channel: %w", err)
	}
	defer conn.Close()

	l.logger.Infow("realtime channel connected", "url", l.cfg.URL)

	stop := context.AfterFunc(ctx, func() {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		conn.Close()
	})
	defer stop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return true, errors.New("realtime channel closed by server")
			}
			return true, fmt.Errorf("failed to read realtime message: %w", err)
		}

		ev, err := ParseEvent(msg)
		if err != nil {
			l.logger.Warnw("dropping malformed realtime message", "bytes", len(msg))
			continue
		}

		if err := l.handler.Handle(ctx, ev); err != nil {
			l.logger.Errorw("failed to handle realtime event", "event_type", ev.EventType, "error", err)
		}
	}
}

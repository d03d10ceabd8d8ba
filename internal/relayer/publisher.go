package relayer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// ReleaseEvent announces a release paid out for a deposit on the other side.
type ReleaseEvent struct {
	Source      string    `json:"source"`
	Destination string    `json:"destination"`
	Nonce       uint64    `json:"nonce"`
	Depositor   string    `json:"depositor"`
	AmountIn    string    `json:"amount_in"`
	AmountOut   string    `json:"amount_out"`
	TxHash      string    `json:"tx_hash"`
	Time        time.Time `json:"time"`
}

// Publisher fans release events out to interested consumers.
type Publisher interface {
	Publish(ctx context.Context, event ReleaseEvent) error
	Close()
}

// NopPublisher drops every event. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, ReleaseEvent) error { return nil }
func (NopPublisher) Close()                                      {}

// NATSPublisher publishes events as JSON on a NATS subject.
type NATSPublisher struct {
	logger  zerolog.Logger
	conn    *nats.Conn
	subject string
}

var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher connects to the NATS server at url. The connection
// reconnects forever in the background.
func NewNATSPublisher(logger zerolog.Logger, url, subject string) (*NATSPublisher, error) {
	logger = logger.With().Str("component", "nats-publisher").Str("subject", subject).Logger()

	conn, err := nats.Connect(url,
		nats.Name("bridgectl-relayer"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn().Err(err).Msg("disconnected from nats")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info().Str("url", nc.ConnectedUrl()).Msg("reconnected to nats")
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info().Msg("nats connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats %s: %w", url, err)
	}

	return &NATSPublisher{logger: logger, conn: conn, subject: subject}, nil
}

func (p *NATSPublisher) Publish(ctx context.Context, event ReleaseEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal release event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish release event: %w", err)
	}
	p.logger.Debug().Uint64("nonce", event.Nonce).Str("tx", event.TxHash).Msg("release event published")
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to drain nats connection")
		p.conn.Close()
	}
}

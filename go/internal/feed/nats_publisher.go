package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/rootleague/go/internal/session"
)

const DefaultSubjectPrefix = "league.matches"

type NATSConfig struct {
	URL           string
	SubjectPrefix string
	ClientName    string
	MaxReconnects int
	ReconnectWait time.Duration
}

func DefaultNATSConfig(url string) NATSConfig {
	return NATSConfig{
		URL:           url,
		SubjectPrefix: DefaultSubjectPrefix,
		ClientName:    "leaguectl",
		MaxReconnects: -1,
		ReconnectWait: 2 * time.Second,
	}
}

// NATSPublisher publishes every snapshot to {prefix}.{matchID}.state. It implements
// session.Publisher.
type NATSPublisher struct {
	nc     *nats.Conn
	prefix string
}

func NewNATSPublisher(cfg NATSConfig) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(cfg.ClientName),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	prefix := cfg.SubjectPrefix
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	log.Info().Str("url", nc.ConnectedUrl()).Str("prefix", prefix).Msg("NATS snapshot publisher connected")
	return &NATSPublisher{nc: nc, prefix: prefix}, nil
}

// Subject returns the subject snapshots of matchID are published on.
func Subject(prefix string, matchID int) string {
	return fmt.Sprintf("%s.%d.state", prefix, matchID)
}

func (p *NATSPublisher) Publish(_ context.Context, snap session.Snapshot) error {
	data, err := json.Marshal(newStateEvent(snap))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := p.nc.Publish(Subject(p.prefix, snap.MatchID), data); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.nc.Drain(); err != nil {
		log.Warn().Err(err).Msg("NATS drain failed")
		p.nc.Close()
	}
}

// Package events publishes matching lifecycle events to NATS so that
// notification and analytics services can react without polling the store.
package events

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects published by the matching service.
const (
	SubjectDealMatched  = "deal.matched"
	SubjectSwipeRequest = "swipe.request"
)

// DealMatched is published after a deal room was provisioned for a new match.
type DealMatched struct {
	MatchID       string `json:"match_id"`
	DealRoomID    string `json:"deal_room_id"`
	ListingID     string `json:"listing_id"`
	BuyerID       string `json:"buyer_id"`
	SellerID      string `json:"seller_id"`
	BuyerIntentID string `json:"buyer_intent_id,omitempty"`
}

// SwipeRequest is published when a buyer says yes to a listing and no match resulted.
type SwipeRequest struct {
	SwipeID   string `json:"swipe_id"`
	ListingID string `json:"listing_id"`
	BuyerID   string `json:"buyer_id"`
}

// Publisher sends events to a subject.
type Publisher interface {
	Publish(subject string, event any) error
}

// NopPublisher discards every event. It is used when NATS is not configured.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(string, any) error { return nil }

// Config holds NATS connection settings.
type Config struct {
	URL           string        // nats://localhost:4222
	Name          string        // client name for identification
	ReconnectWait time.Duration // time between reconnect attempts
	MaxReconnects int           // max reconnect attempts (-1 for infinite)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		URL:           "nats://localhost:4222",
		Name:          "real-estate-matching",
		ReconnectWait: 2 * time.Second,
		MaxReconnects: -1,
	}
}

// NATSPublisher publishes JSON-encoded events over a NATS connection.
type NATSPublisher struct {
	conn *nats.Conn
}

// NewNATSPublisher connects to NATS and returns a ready publisher.
// It returns an error if the initial connection fails.
func NewNATSPublisher(config Config) (*NATSPublisher, error) {
	opts := []nats.Option{
		nats.Name(config.Name),
		nats.ReconnectWait(config.ReconnectWait),
		nats.MaxReconnects(config.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("[nats] disconnected: %v", err)
			} else {
				log.Printf("[nats] disconnected")
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[nats] reconnected to %s", nc.ConnectedUrl())
		}),
	}

	nc, err := nats.Connect(config.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	log.Printf("[nats] connected to %s", nc.ConnectedUrl())
	return &NATSPublisher{conn: nc}, nil
}

// Publish encodes event as JSON and sends it to subject.
func (p *NATSPublisher) Publish(subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("events: publish %s: %w", subject, err)
	}
	return nil
}

// Close drains pending messages and closes the connection.
func (p *NATSPublisher) Close() {
	if err := p.conn.Drain(); err != nil {
		log.Printf("[nats] drain error: %v", err)
		p.conn.Close()
	}
}

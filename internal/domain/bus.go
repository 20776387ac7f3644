package domain

import "context"

// EventBus carries pipeline events between the API and async workers.
// Every call is scoped to one facility; implementations must not leak
// messages across facilities.
type EventBus interface {
	// Publish sends a payload on the facility's topic.
	Publish(ctx context.Context, facilityID string, topic string, payload []byte) error

	// Subscribe registers a handler on the facility's topic.
	Subscribe(ctx context.Context, facilityID string, topic string, handler MessageHandler) (Subscription, error)

	// Request publishes and waits for a reply.
	Request(ctx context.Context, facilityID string, topic string, payload []byte) ([]byte, error)

	Ping(ctx context.Context) error
	Close() error
}

// MessageHandler processes one delivered message.
type MessageHandler func(ctx context.Context, msg *Message) error

// Message is the envelope every bus implementation delivers.
type Message struct {
	ID         string            `json:"id"`
	FacilityID string            `json:"facilityId"`
	Topic      string            `json:"topic"`
	Payload    []byte            `json:"payload"`
	Metadata   map[string]string `json:"metadata"`
	Timestamp  int64             `json:"timestamp"`
}

// Subscription is a live topic registration.
type Subscription interface {
	Unsubscribe() error
	Topic() string
}

// EventBusConfig selects and tunes the bus implementation.
type EventBusConfig struct {
	// Type is "channel" (community) or "nats" (pro).
	Type string

	ChannelBufferSize int

	NATSUrl           string
	NATSToken         string
	NATSMaxReconnects int
	NATSReconnectWait int // seconds
}

// Topics of the billing analysis pipeline.
const (
	TopicBillSaved         = "heron.bill.saved"
	TopicAnalysisCompleted = "heron.analysis.completed"
	TopicAnomalyAlert      = "heron.anomaly.alert"
)

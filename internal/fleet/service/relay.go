package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"motofleet/internal/broker"
	"motofleet/internal/fleet/models"
	"motofleet/internal/platform/metrics"
	"motofleet/pkg/requestcontext"
)

// summaryPayload is the structured message broadcast when a distinguished
// model-year vehicle is registered.
type summaryPayload struct {
	EventType    string `json:"event_type"`
	EventID      string `json:"event_id"`
	LicensePlate string `json:"license_plate"`
	Model        string `json:"model"`
	Year         int    `json:"year"`
	PublishedAt  string `json:"published_at"`
}

type relayMessage struct {
	topic   string
	payload []byte
	eventID string
}

// Relay broadcasts registration events after the vehicle insert has
// committed. Notify enqueues; Run publishes. The two stay decoupled so a
// slow or failing broker never reaches back into a registration: failures
// are logged and counted, nothing more.
type Relay struct {
	publisher broker.Publisher
	topic     string
	logger    *slog.Logger
	metrics   *metrics.Metrics
	inbox     chan relayMessage
}

// NewRelay builds a relay for the given publisher and topic. A nil
// publisher disables broadcasting (Notify becomes a no-op).
func NewRelay(publisher broker.Publisher, topic string, logger *slog.Logger, m *metrics.Metrics) *Relay {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Relay{
		publisher: publisher,
		topic:     topic,
		logger:    logger,
		metrics:   m,
		inbox:     make(chan relayMessage, 64),
	}
}

// Notify enqueues the broadcast for a registration event. Never blocks the
// caller: if the inbox is full the message is dropped and logged.
func (r *Relay) Notify(ctx context.Context, e *models.RegistrationEvent, v *models.Vehicle) {
	if r == nil || r.publisher == nil {
		return
	}
	payload, err := json.Marshal(summaryPayload{
		EventType:    "New2024Motorcycle",
		EventID:      e.ID.String(),
		LicensePlate: v.LicensePlate,
		Model:        v.Model,
		Year:         v.ModelYear,
		PublishedAt:  requestcontext.Now(ctx).UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "marshal registration broadcast", "error", err)
		return
	}

	select {
	case r.inbox <- relayMessage{topic: r.topic, payload: payload, eventID: e.ID.String()}:
	default:
		r.logger.WarnContext(ctx, "relay inbox full, dropping registration broadcast",
			"event_id", e.ID.String(),
		)
		r.countError()
	}
}

// Run consumes the inbox until the context is cancelled.
func (r *Relay) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-r.inbox:
			if err := r.publisher.Publish(ctx, msg.topic, msg.payload); err != nil {
				r.logger.ErrorContext(ctx, "registration broadcast failed",
					"event_id", msg.eventID,
					"topic", msg.topic,
					"error", err,
				)
				r.countError()
				continue
			}
			if r.metrics != nil {
				r.metrics.EventsPublished.Inc()
			}
		}
	}
}

func (r *Relay) countError() {
	if r.metrics != nil {
		r.metrics.EventPublishErrors.Inc()
	}
}

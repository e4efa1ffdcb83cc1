package invoices

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/logger"
	"github.com/swiftparcel/courierdesk-backend/pkg/metrics"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox/idempotency"
	"github.com/swiftparcel/courierdesk-backend/pkg/outbox/payloads"
)

const invoiceDispatchConsumer = "invoice-dispatch"

type shipmentSource interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shipment, error)
}

// Consumer watches invoice_requested events and runs the render/deliver
// pipeline. Delivery failures are logged and counted, never retried through
// the queue: the operations that enqueued the event already committed.
type Consumer struct {
	shipments    shipmentSource
	renderer     Renderer
	senders      []Sender
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	metrics      *metrics.DispatchMetrics
	timeout      time.Duration
	logg         *logger.Logger
}

// NewConsumer builds an invoice dispatch consumer.
func NewConsumer(
	shipments shipmentSource,
	renderer Renderer,
	senders []Sender,
	subscription *pubsub.Subscriber,
	manager *idempotency.Manager,
	dispatchMetrics *metrics.DispatchMetrics,
	timeout time.Duration,
	logg *logger.Logger,
) (*Consumer, error) {
	if shipments == nil {
		return nil, fmt.Errorf("shipment source required")
	}
	if renderer == nil {
		return nil, fmt.Errorf("renderer required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("invoice subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	return &Consumer{
		shipments:    shipments,
		renderer:     renderer,
		senders:      senders,
		subscription: subscription,
		idempotency:  manager,
		metrics:      dispatchMetrics,
		timeout:      timeout,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := msg.Attributes["event_type"]
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": eventType,
	})

	if eventType != string(enums.EventInvoiceRequested) {
		c.logg.Info(logCtx, "skipping non-invoice event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, invoiceDispatchConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	var payload payloads.InvoiceRequestedEvent
	if err := json.Unmarshal(envelope.Data, &payload); err != nil {
		c.logg.Error(logCtx, "failed to parse payload", err)
		_ = c.idempotency.Delete(ctx, invoiceDispatchConsumer, eventID)
		return processResult{nack: true}
	}

	logCtx = c.logg.WithFields(logCtx, map[string]any{
		"shipment_id":     payload.ShipmentID.String(),
		"tracking_number": payload.TrackingNumber,
		"trigger":         payload.Trigger,
	})

	// Fire-and-forget: the dispatch either happens inside the window or it is
	// dropped with a logged failure. The event is acked either way.
	c.dispatch(logCtx, payload)
	return processResult{ack: true}
}

func (c *Consumer) dispatch(ctx context.Context, payload payloads.InvoiceRequestedEvent) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	shipment, err := c.shipments.FindByID(ctx, payload.ShipmentID)
	if err != nil {
		c.metrics.IncFailure("render")
		c.logg.Error(ctx, "loading shipment for invoice failed", err)
		return
	}
	if shipment == nil {
		c.logg.Warn(ctx, "shipment gone before invoice dispatch")
		return
	}
	if shipment.Status == enums.ShipmentStatusCancelled {
		c.logg.Info(ctx, "skipping invoice for cancelled shipment")
		return
	}

	snapshot := NewSnapshot(shipment, payload.Trigger)
	document, err := c.renderer.Render(ctx, snapshot)
	if err != nil {
		c.metrics.IncFailure("render")
		c.logg.Error(ctx, "invoice render failed", err)
		return
	}

	var delivery error
	for _, sender := range c.senders {
		start := time.Now()
		err := sender.Send(ctx, snapshot, document)
		c.metrics.ObserveDuration(sender.Channel(), time.Since(start))
		if err != nil {
			c.metrics.IncFailure(sender.Channel())
			delivery = multierr.Append(delivery, fmt.Errorf("%s: %w", sender.Channel(), err))
			continue
		}
		c.metrics.IncSuccess(sender.Channel())
	}
	if delivery != nil {
		c.logg.Error(ctx, "invoice delivery incomplete", delivery)
		return
	}

	c.logg.Info(ctx, "invoice dispatched")
}

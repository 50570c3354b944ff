package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hearthware/ovenlink/internal/domain/models"
	domainsvc "github.com/hearthware/ovenlink/internal/domain/service"
	"github.com/hearthware/ovenlink/internal/infrastructure/iot"
	"github.com/hearthware/ovenlink/internal/infrastructure/monitoring"
	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

// CommandDispatcher formats and publishes outbound command envelopes on the
// command-request topic of the current connection. Fire and forget: the
// correlated response, if any, arrives on the response topic and is merged
// like any other inbound frame. Owned by the session goroutine.
type CommandDispatcher struct {
	identity models.ApplianceIdentity
	channel  domainsvc.DeviceChannel
	log      logger.Logger
	metrics  *monitoring.Metrics

	clientID string
}

// NewCommandDispatcher creates a dispatcher bound to one appliance. It cannot
// publish until Bind is called with a live connection's client id.
func NewCommandDispatcher(
	identity models.ApplianceIdentity,
	channel domainsvc.DeviceChannel,
	log logger.Logger,
	metrics *monitoring.Metrics,
) *CommandDispatcher {
	return &CommandDispatcher{
		identity: identity,
		channel:  channel,
		log:      log,
		metrics:  metrics,
	}
}

// Bind ties the dispatcher to the client id of the current connection. The
// request topic is scoped to that id, so a reconnect must rebind.
func (d *CommandDispatcher) Bind(clientID string) {
	d.clientID = clientID
}

// Send wraps the command in the fixed envelope and publishes it. It fails
// with channel_unavailable when no live connection exists; nothing is queued
// or retried.
func (d *CommandDispatcher) Send(ctx context.Context, addressee string, command constants.Command, fields map[string]interface{}) error {
	ctx, span := tracer.Start(ctx, "command.dispatch",
		trace.WithAttributes(attribute.String("command", string(command))))
	defer span.End()

	err := d.send(ctx, addressee, command, fields)
	d.metrics.RecordCommand(string(command), err)
	return err
}

func (d *CommandDispatcher) send(ctx context.Context, addressee string, command constants.Command, fields map[string]interface{}) error {
	if d.clientID == "" || !d.channel.IsConnected() {
		return errors.ErrChannelUnavailable()
	}

	envelope := models.NewCommandEnvelope(addressee, command, fields)
	encoded, err := envelope.Encode()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode command envelope")
	}

	topic := iot.CommandRequestTopic(d.identity.Model, d.identity.SAID, d.clientID)
	if err := d.channel.Publish(ctx, topic, encoded); err != nil {
		return err
	}

	d.log.Debug(ctx, "command published", logger.Fields{
		"command":    string(command),
		"addressee":  addressee,
		"request_id": envelope.RequestID,
	})
	return nil
}

// SendGetState asks the appliance to publish its full current state.
func (d *CommandDispatcher) SendGetState(ctx context.Context) error {
	return d.Send(ctx, constants.AddresseeAppliance, constants.CommandGetState, nil)
}

package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hearthware/ovenlink/internal/application/service"
	"github.com/hearthware/ovenlink/internal/domain/models"
	"github.com/hearthware/ovenlink/pkg/constants"
	"github.com/hearthware/ovenlink/pkg/errors"
	"github.com/hearthware/ovenlink/pkg/logger"
)

func testIdentity() models.ApplianceIdentity {
	return models.ApplianceIdentity{SAID: "SAID1", Model: "oven", Brand: "whirlpool"}
}

func TestCommandDispatcher_NoConnection(t *testing.T) {
	channel := &fakeChannel{}
	dispatcher := service.NewCommandDispatcher(testIdentity(), channel, logger.NewNoopLogger(), newTestMetrics())

	err := dispatcher.Send(context.Background(), constants.AddresseePrimaryCavity, constants.CommandCancel,
		map[string]interface{}{"sessionId": "abc"})

	assert.True(t, errors.IsChannelUnavailable(err))
	assert.Empty(t, channel.publishedMessages(), "no network activity without a live connection")
}

func TestCommandDispatcher_UnboundDispatcher(t *testing.T) {
	channel := &fakeChannel{}
	channel.setConnected(true)
	dispatcher := service.NewCommandDispatcher(testIdentity(), channel, logger.NewNoopLogger(), newTestMetrics())

	err := dispatcher.SendGetState(context.Background())

	assert.True(t, errors.IsChannelUnavailable(err))
}

func TestCommandDispatcher_Send(t *testing.T) {
	channel := &fakeChannel{}
	channel.setConnected(true)
	dispatcher := service.NewCommandDispatcher(testIdentity(), channel, logger.NewNoopLogger(), newTestMetrics())
	dispatcher.Bind("client-1")

	err := dispatcher.Send(context.Background(), constants.AddresseePrimaryCavity, constants.CommandSet,
		map[string]interface{}{"cavityLight": true})
	require.NoError(t, err)

	published := channel.publishedMessages()
	require.Len(t, published, 1)
	assert.Equal(t, "cmd/oven/SAID1/request/client-1", published[0].topic)

	var envelope models.CommandEnvelope
	require.NoError(t, json.Unmarshal(published[0].payload, &envelope))
	assert.NotEmpty(t, envelope.RequestID)
	assert.NotZero(t, envelope.Timestamp)
	assert.Equal(t, "primaryCavity", envelope.Payload["addressee"])
	assert.Equal(t, "set", envelope.Payload["command"])
	assert.Equal(t, true, envelope.Payload["cavityLight"])
}

package iot

import (
	"fmt"
	"strings"
)

// Topic layout of the appliance broker. {model} is the device type tag,
// {said} the appliance id, {client_id} the per-connection client identifier.
const (
	stateUpdatePattern = "dt/%s/%s/state/update"
	cmdRequestPattern  = "cmd/%s/%s/request/%s"
	cmdResponsePattern = "cmd/%s/%s/response/%s"
)

// StateUpdateTopic is the appliance-to-session topic carrying full or partial
// state mappings at the top level.
func StateUpdateTopic(model, said string) string {
	return fmt.Sprintf(stateUpdatePattern, model, said)
}

// CommandRequestTopic is the session-to-appliance topic for command envelopes.
func CommandRequestTopic(model, said, clientID string) string {
	return fmt.Sprintf(cmdRequestPattern, model, said, clientID)
}

// CommandResponseTopic is the appliance-to-session topic carrying command
// responses with the state mapping wrapped in a payload field.
func CommandResponseTopic(model, said, clientID string) string {
	return fmt.Sprintf(cmdResponsePattern, model, said, clientID)
}

// IsStateUpdateTopic distinguishes the two inbound payload shapes: state
// topics carry the mapping directly, everything else wraps it in "payload".
func IsStateUpdateTopic(topic string) bool {
	return strings.Contains(topic, "/state/update")
}

// Package models defines the domain models for the ovenlink appliance bridge.
package models

import (
	"fmt"

	"github.com/hearthware/ovenlink/pkg/errors"
)

// ApplianceIdentity is the immutable description of one physical unit,
// fixed at pairing time.
type ApplianceIdentity struct {
	// SAID is the stable appliance id assigned by the vendor cloud.
	SAID string

	// Model is the device type tag used in channel topic names.
	Model string

	// Brand selects the OAuth client pair used for this unit's account.
	Brand string
}

// NewApplianceIdentity validates and creates an appliance identity.
func NewApplianceIdentity(said, model, brand string) (ApplianceIdentity, error) {
	if said == "" {
		return ApplianceIdentity{}, errors.New(errors.CodeInvalidRequest, "said must not be empty")
	}
	if model == "" {
		return ApplianceIdentity{}, errors.New(errors.CodeInvalidRequest, "model must not be empty")
	}
	return ApplianceIdentity{SAID: said, Model: model, Brand: brand}, nil
}

func (a ApplianceIdentity) String() string {
	return fmt.Sprintf("%s/%s", a.Model, a.SAID)
}

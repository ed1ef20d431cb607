package service

import (
	"fmt"

	"agromarket/internal/models"

	"github.com/google/uuid"
)

// Party is the side of an order an actor holds.
type Party string

const (
	PartyFarmer   Party = "farmer"
	PartyRetailer Party = "retailer"
	PartyNone     Party = ""
)

// ErrInvalidTransition is returned for a status move the transition table
// does not allow, including any move out of a terminal status.
var ErrInvalidTransition = fmt.Errorf("invalid order status transition")

// ErrWrongParty is returned when the transition exists but the acting party
// is not the one permitted to perform it.
var ErrWrongParty = fmt.Errorf("transition not permitted for this party")

// transitions is the full order lifecycle: (from, to) -> permitted party.
// Accepting, rejecting and completing are the farmer's moves; terminal
// statuses have no outgoing edges.
var transitions = map[string]map[string]Party{
	models.OrderStatusPending: {
		models.OrderStatusAccepted: PartyFarmer,
		models.OrderStatusRejected: PartyFarmer,
	},
	models.OrderStatusAccepted: {
		models.OrderStatusCompleted: PartyFarmer,
	},
}

// CheckTransition validates a status move for an acting party against the
// transition table.
func CheckTransition(from, to string, actor Party) error {
	if !models.ValidOrderStatus(to) {
		return ErrInvalidTransition
	}
	allowed, ok := transitions[from][to]
	if !ok {
		return ErrInvalidTransition
	}
	if actor != allowed {
		return ErrWrongParty
	}
	return nil
}

// OrderParty returns the side the principal holds on the order, or PartyNone.
func OrderParty(o *models.Order, actorID uuid.UUID) Party {
	switch actorID {
	case o.FarmerID:
		return PartyFarmer
	case o.RetailerID:
		return PartyRetailer
	}
	return PartyNone
}

package service

import (
	"testing"

	"agromarket/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCheckTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		actor   Party
		wantErr error
	}{
		{"farmer accepts pending", models.OrderStatusPending, models.OrderStatusAccepted, PartyFarmer, nil},
		{"farmer rejects pending", models.OrderStatusPending, models.OrderStatusRejected, PartyFarmer, nil},
		{"farmer completes accepted", models.OrderStatusAccepted, models.OrderStatusCompleted, PartyFarmer, nil},

		{"retailer cannot accept", models.OrderStatusPending, models.OrderStatusAccepted, PartyRetailer, ErrWrongParty},
		{"retailer cannot reject", models.OrderStatusPending, models.OrderStatusRejected, PartyRetailer, ErrWrongParty},
		{"retailer cannot complete", models.OrderStatusAccepted, models.OrderStatusCompleted, PartyRetailer, ErrWrongParty},

		{"pending cannot jump to completed", models.OrderStatusPending, models.OrderStatusCompleted, PartyFarmer, ErrInvalidTransition},
		{"accepted cannot go back to pending", models.OrderStatusAccepted, models.OrderStatusPending, PartyFarmer, ErrInvalidTransition},
		{"unknown target status", models.OrderStatusPending, "shipped", PartyFarmer, ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckTransition(tt.from, tt.to, tt.actor)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	all := []string{
		models.OrderStatusPending,
		models.OrderStatusAccepted,
		models.OrderStatusRejected,
		models.OrderStatusCompleted,
	}

	for _, from := range []string{models.OrderStatusRejected, models.OrderStatusCompleted} {
		for _, to := range all {
			for _, actor := range []Party{PartyFarmer, PartyRetailer} {
				assert.ErrorIs(t, CheckTransition(from, to, actor), ErrInvalidTransition,
					"terminal status %s must not transition to %s", from, to)
			}
		}
	}
}

func TestOrderParty(t *testing.T) {
	farmerID := uuid.New()
	retailerID := uuid.New()
	order := &models.Order{FarmerID: farmerID, RetailerID: retailerID}

	assert.Equal(t, PartyFarmer, OrderParty(order, farmerID))
	assert.Equal(t, PartyRetailer, OrderParty(order, retailerID))
	assert.Equal(t, PartyNone, OrderParty(order, uuid.New()))
}

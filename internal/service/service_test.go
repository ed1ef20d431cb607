package service

import (
	"context"
	"testing"

	"agromarket/internal/models"
	"agromarket/internal/policy"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func requesterStub() policy.Requester {
	return policy.Requester{ID: uuid.New(), Role: models.RoleRetailer}
}

func TestValidateProductRequest(t *testing.T) {
	valid := ProductRequest{Name: "Tomatoes", Category: "vegetables", Price: 20, QuantityAvailable: 100}
	assert.NoError(t, validateProductRequest(&valid))

	tests := []struct {
		name string
		req  ProductRequest
	}{
		{"missing name", ProductRequest{Category: "vegetables", Price: 20}},
		{"blank name", ProductRequest{Name: "   ", Category: "vegetables", Price: 20}},
		{"missing category", ProductRequest{Name: "Tomatoes", Price: 20}},
		{"negative price", ProductRequest{Name: "Tomatoes", Category: "vegetables", Price: -1}},
		{"negative stock", ProductRequest{Name: "Tomatoes", Category: "vegetables", Price: 20, QuantityAvailable: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, validateProductRequest(&tt.req), ErrValidation)
		})
	}
}

func TestListProfilesRejectsUnknownRole(t *testing.T) {
	svc := NewProfileService(nil)

	for _, role := range []string{"", "admin", "buyer"} {
		_, err := svc.ListProfiles(context.Background(), requesterStub(), role)
		assert.ErrorIs(t, err, ErrValidation, "role %q must be rejected", role)
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, models.ValidRole(models.RoleFarmer))
	assert.True(t, models.ValidRole(models.RoleRetailer))
	assert.False(t, models.ValidRole("admin"))
	assert.False(t, models.ValidRole(""))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, models.ValidPaymentMethod(models.PaymentMethodOnline))
	assert.True(t, models.ValidPaymentMethod(models.PaymentMethodCashOnDelivery))
	assert.False(t, models.ValidPaymentMethod("card"))
}

func TestTerminalStatus(t *testing.T) {
	assert.True(t, models.TerminalStatus(models.OrderStatusRejected))
	assert.True(t, models.TerminalStatus(models.OrderStatusCompleted))
	assert.False(t, models.TerminalStatus(models.OrderStatusPending))
	assert.False(t, models.TerminalStatus(models.OrderStatusAccepted))
}

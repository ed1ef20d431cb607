package service

import (
	"context"
	"fmt"
	"testing"

	"agromarket/internal/models"
	"agromarket/internal/policy"
	"agromarket/internal/store"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeOrderStore backs order-service tests without a database. Orders are
// indexed by idempotency key the way the real store's unique column behaves.
type fakeOrderStore struct {
	byKey      map[string]*models.Order
	byID       map[uuid.UUID]*models.Order
	placeErr   error
	updateErr  error
	placeCalls int
}

func newFakeOrderStore() *fakeOrderStore {
	return &fakeOrderStore{
		byKey: make(map[string]*models.Order),
		byID:  make(map[uuid.UUID]*models.Order),
	}
}

func (f *fakeOrderStore) add(o *models.Order) {
	if o.IdempotencyKey != nil {
		f.byKey[*o.IdempotencyKey] = o
	}
	f.byID[o.ID] = o
}

func (f *fakeOrderStore) PlaceOrderTx(_ context.Context, order *models.Order) error {
	f.placeCalls++
	if f.placeErr != nil {
		return f.placeErr
	}
	if order.IdempotencyKey != nil {
		if _, taken := f.byKey[*order.IdempotencyKey]; taken {
			return fmt.Errorf("pq: duplicate key value violates unique constraint")
		}
	}
	order.ID = uuid.New()
	order.Status = models.OrderStatusPending
	f.add(order)
	return nil
}

func (f *fakeOrderStore) GetOrderByID(_ context.Context, id uuid.UUID) (*models.Order, error) {
	if o, ok := f.byID[id]; ok {
		return o, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeOrderStore) GetOrderByIdempotencyKey(_ context.Context, key string, retailerID uuid.UUID) (*models.Order, error) {
	if o, ok := f.byKey[key]; ok && o.RetailerID == retailerID {
		return o, nil
	}
	return nil, nil
}

func (f *fakeOrderStore) ListOrdersForParty(_ context.Context, partyID uuid.UUID, status string) ([]models.Order, error) {
	var out []models.Order
	for _, o := range f.byID {
		if (o.RetailerID == partyID || o.FarmerID == partyID) && (status == "" || o.Status == status) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (f *fakeOrderStore) UpdateOrderStatus(_ context.Context, orderID uuid.UUID, from, to string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	o, ok := f.byID[orderID]
	if !ok || o.Status != from {
		return store.ErrStaleStatus
	}
	o.Status = to
	return nil
}

func placeRequest(productID uuid.UUID, key string) *PlaceOrderRequest {
	return &PlaceOrderRequest{
		ProductID:       productID,
		Quantity:        5,
		PaymentMethod:   models.PaymentMethodCashOnDelivery,
		DeliveryAddress: "12 Market Road",
		IdempotencyKey:  key,
	}
}

func TestPlaceOrderPolicyGate(t *testing.T) {
	fake := newFakeOrderStore()
	svc := NewOrderService(fake, nil, nil)

	farmer := policy.Requester{ID: uuid.New(), Role: models.RoleFarmer}
	_, err := svc.PlaceOrder(context.Background(), farmer, placeRequest(uuid.New(), "key-f"))
	assert.ErrorIs(t, err, ErrNotPermitted)

	noProfile := policy.Requester{ID: uuid.New()}
	_, err = svc.PlaceOrder(context.Background(), noProfile, placeRequest(uuid.New(), "key-n"))
	assert.ErrorIs(t, err, ErrNotPermitted)

	// Neither denial reached the store.
	assert.Zero(t, fake.placeCalls)
}

func TestPlaceOrderReplaySameRetailer(t *testing.T) {
	fake := newFakeOrderStore()
	svc := NewOrderService(fake, nil, nil)

	retailer := policy.Requester{ID: uuid.New(), Role: models.RoleRetailer}
	key := "replay-key"
	existing := &models.Order{
		ID:             uuid.New(),
		RetailerID:     retailer.ID,
		FarmerID:       uuid.New(),
		Status:         models.OrderStatusPending,
		IdempotencyKey: &key,
	}
	fake.add(existing)

	got, err := svc.PlaceOrder(context.Background(), retailer, placeRequest(existing.ProductID, key))
	require.NoError(t, err)
	assert.Equal(t, existing.ID, got.ID)
	assert.Zero(t, fake.placeCalls)
}

func TestPlaceOrderReplayForeignKey(t *testing.T) {
	fake := newFakeOrderStore()
	svc := NewOrderService(fake, nil, nil)

	owner := policy.Requester{ID: uuid.New(), Role: models.RoleRetailer}
	key := "shared-key"
	notes := "deliver to the back gate"
	owned := &models.Order{
		ID:              uuid.New(),
		RetailerID:      owner.ID,
		FarmerID:        uuid.New(),
		Status:          models.OrderStatusPending,
		DeliveryAddress: "1 Private Lane",
		Notes:           &notes,
		IdempotencyKey:  &key,
	}
	fake.add(owned)

	// A different retailer replaying the key must never see the owner's
	// order; the write falls through to the unique constraint instead.
	intruder := policy.Requester{ID: uuid.New(), Role: models.RoleRetailer}
	got, err := svc.PlaceOrder(context.Background(), intruder, placeRequest(owned.ProductID, key))
	assert.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 1, fake.placeCalls)
}

func TestUpdateStatusConcurrentTransition(t *testing.T) {
	fake := newFakeOrderStore()
	svc := NewOrderService(fake, nil, nil)

	farmer := policy.Requester{ID: uuid.New(), Role: models.RoleFarmer}
	order := &models.Order{
		ID:         uuid.New(),
		RetailerID: uuid.New(),
		FarmerID:   farmer.ID,
		Status:     models.OrderStatusPending,
	}
	fake.add(order)
	fake.updateErr = store.ErrStaleStatus

	// The guarded update lost to a concurrent transition.
	_, err := svc.UpdateStatus(context.Background(), farmer, order.ID, models.OrderStatusAccepted)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

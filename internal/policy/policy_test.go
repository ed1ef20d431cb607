package policy

import (
	"testing"

	"agromarket/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

var (
	farmerID   = uuid.New()
	retailerID = uuid.New()
	strangerID = uuid.New()

	farmer   = Requester{ID: farmerID, Role: models.RoleFarmer}
	retailer = Requester{ID: retailerID, Role: models.RoleRetailer}
	stranger = Requester{ID: strangerID, Role: models.RoleRetailer}
)

func TestProductVisibility(t *testing.T) {
	tests := []struct {
		name      string
		requester Requester
		product   models.Product
		visible   bool
	}{
		{"available product visible to anyone", stranger, models.Product{FarmerID: farmerID, Available: true}, true},
		{"unavailable product hidden from others", stranger, models.Product{FarmerID: farmerID, Available: false}, false},
		{"unavailable product visible to owner", farmer, models.Product{FarmerID: farmerID, Available: false}, true},
		{"available product visible to owner", farmer, models.Product{FarmerID: farmerID, Available: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.visible, CanReadProduct(tt.requester, &tt.product))
		})
	}
}

func TestProductInsert(t *testing.T) {
	tests := []struct {
		name      string
		requester Requester
		product   models.Product
		allowed   bool
	}{
		{"farmer inserts own listing", farmer, models.Product{FarmerID: farmerID}, true},
		{"farmer cannot insert for another farmer", farmer, models.Product{FarmerID: strangerID}, false},
		{"retailer cannot insert even as owner", retailer, models.Product{FarmerID: retailerID}, false},
		{"wrong owner and wrong role", stranger, models.Product{FarmerID: farmerID}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanInsertProduct(tt.requester, &tt.product))
		})
	}
}

func TestProductUpdateOwnership(t *testing.T) {
	old := models.Product{FarmerID: farmerID, Available: true}

	assert.True(t, CanUpdateProduct(farmer, &old, &models.Product{FarmerID: farmerID, Available: false}))

	// Ownership transfer is rejected on the post-state.
	assert.False(t, CanUpdateProduct(farmer, &old, &models.Product{FarmerID: strangerID}))
	assert.False(t, CanUpdateProduct(stranger, &old, &models.Product{FarmerID: strangerID}))

	assert.True(t, CanDeleteProduct(farmer, &old))
	assert.False(t, CanDeleteProduct(stranger, &old))
}

func TestOrderVisibility(t *testing.T) {
	order := models.Order{RetailerID: retailerID, FarmerID: farmerID}

	assert.True(t, CanReadOrder(retailer, &order))
	assert.True(t, CanReadOrder(farmer, &order))
	assert.False(t, CanReadOrder(stranger, &order))
}

func TestOrderInsert(t *testing.T) {
	tests := []struct {
		name      string
		requester Requester
		order     models.Order
		allowed   bool
	}{
		{"retailer orders for itself", retailer, models.Order{RetailerID: retailerID, FarmerID: farmerID}, true},
		{"retailer cannot order for another", retailer, models.Order{RetailerID: strangerID, FarmerID: farmerID}, false},
		{"farmer cannot place orders", farmer, models.Order{RetailerID: farmerID, FarmerID: farmerID}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanInsertOrder(tt.requester, &tt.order))
		})
	}
}

func TestOrderUpdateParties(t *testing.T) {
	old := models.Order{RetailerID: retailerID, FarmerID: farmerID, Status: models.OrderStatusPending}

	accepted := old
	accepted.Status = models.OrderStatusAccepted

	assert.True(t, CanUpdateOrder(farmer, &old, &accepted))
	assert.True(t, CanUpdateOrder(retailer, &old, &accepted))
	assert.False(t, CanUpdateOrder(stranger, &old, &accepted))

	// A party cannot rewrite the order onto different principals.
	hijacked := old
	hijacked.RetailerID = strangerID
	hijacked.FarmerID = strangerID
	assert.False(t, CanUpdateOrder(retailer, &old, &hijacked))
}

func TestMessagePredicates(t *testing.T) {
	msg := models.Message{SenderID: retailerID, ReceiverID: farmerID}

	assert.True(t, CanReadMessage(retailer, &msg))
	assert.True(t, CanReadMessage(farmer, &msg))
	assert.False(t, CanReadMessage(stranger, &msg))

	// Forged sender: receiver set to self, sender set to someone else.
	forged := models.Message{SenderID: farmerID, ReceiverID: retailerID}
	assert.False(t, CanInsertMessage(retailer, &forged))
	assert.True(t, CanInsertMessage(retailer, &msg))

	// Only the receiver may flip the read flag.
	read := msg
	read.IsRead = true
	assert.True(t, CanUpdateMessage(farmer, &msg, &read))
	assert.False(t, CanUpdateMessage(retailer, &msg, &read))
}

func TestFilterProducts(t *testing.T) {
	products := []models.Product{
		{ID: uuid.New(), FarmerID: farmerID, Available: true},
		{ID: uuid.New(), FarmerID: farmerID, Available: false},
		{ID: uuid.New(), FarmerID: strangerID, Available: true},
	}

	assert.Len(t, FilterProducts(retailer, products), 2)
	assert.Len(t, FilterProducts(farmer, products), 3)
}

func TestFilterOrders(t *testing.T) {
	orders := []models.Order{
		{ID: uuid.New(), RetailerID: retailerID, FarmerID: farmerID},
		{ID: uuid.New(), RetailerID: strangerID, FarmerID: farmerID},
	}

	assert.Len(t, FilterOrders(retailer, orders), 1)
	assert.Len(t, FilterOrders(farmer, orders), 2)
	assert.Len(t, FilterOrders(Requester{ID: uuid.New()}, orders), 0)
}

func TestProfilePredicates(t *testing.T) {
	own := models.Profile{ID: retailerID, Role: models.RoleRetailer}
	other := models.Profile{ID: farmerID, Role: models.RoleFarmer}

	assert.True(t, CanReadProfile(retailer, &other))
	assert.True(t, CanInsertProfile(retailer, &own))
	assert.False(t, CanInsertProfile(retailer, &other))

	renamed := own
	renamed.FullName = "New Name"
	assert.True(t, CanUpdateProfile(retailer, &own, &renamed))
	assert.False(t, CanUpdateProfile(farmer, &own, &renamed))

	rekeyed := own
	rekeyed.ID = strangerID
	assert.False(t, CanUpdateProfile(retailer, &own, &rekeyed))
}

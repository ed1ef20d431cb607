// Package policy holds the per-store, per-operation access predicates as a
// single table of pure functions over (requester, row). Services consult it
// before every write and filter every read through it; nothing else in the
// codebase makes an authorization decision.
package policy

import (
	"agromarket/internal/models"

	"github.com/google/uuid"
)

// Requester identifies the authenticated principal making a request. Role is
// the role recorded on the principal's profile, or empty when no profile
// exists yet (a fresh signup may only self-insert a profile).
type Requester struct {
	ID   uuid.UUID
	Role string
}

// Profiles

// CanReadProfile permits any authenticated principal to read any profile.
func CanReadProfile(r Requester, p *models.Profile) bool {
	return true
}

// CanInsertProfile permits a principal to create only its own profile.
func CanInsertProfile(r Requester, p *models.Profile) bool {
	return p.ID == r.ID
}

// CanUpdateProfile permits a principal to update only its own profile, and
// forbids re-keying the row to another principal.
func CanUpdateProfile(r Requester, old, new *models.Profile) bool {
	return old.ID == r.ID && new.ID == r.ID
}

// Products

// CanReadProduct permits reading a listing while it is available, or always
// for its owning farmer.
func CanReadProduct(r Requester, p *models.Product) bool {
	return p.Available || p.FarmerID == r.ID
}

// CanInsertProduct permits a farmer to create listings owned by itself. The
// role check is the one correlated sub-check in the table: it depends on the
// requester's profile, not just the row.
func CanInsertProduct(r Requester, p *models.Product) bool {
	return p.FarmerID == r.ID && r.Role == models.RoleFarmer
}

// CanUpdateProduct permits the owning farmer to update a listing without
// transferring ownership.
func CanUpdateProduct(r Requester, old, new *models.Product) bool {
	return old.FarmerID == r.ID && new.FarmerID == r.ID
}

// CanDeleteProduct permits the owning farmer to delete a listing.
func CanDeleteProduct(r Requester, p *models.Product) bool {
	return p.FarmerID == r.ID
}

// Orders

// CanReadOrder permits either involved party to read an order.
func CanReadOrder(r Requester, o *models.Order) bool {
	return o.RetailerID == r.ID || o.FarmerID == r.ID
}

// CanInsertOrder permits a retailer to create orders on its own behalf.
func CanInsertOrder(r Requester, o *models.Order) bool {
	return o.RetailerID == r.ID && r.Role == models.RoleRetailer
}

// CanUpdateOrder permits either involved party to update an order, checked
// against both the pre- and post-state so a party cannot write itself out of
// (or into) an order.
func CanUpdateOrder(r Requester, old, new *models.Order) bool {
	return isOrderParty(r, old) && isOrderParty(r, new)
}

func isOrderParty(r Requester, o *models.Order) bool {
	return o.RetailerID == r.ID || o.FarmerID == r.ID
}

// Messages

// CanReadMessage permits sender and receiver to read a message.
func CanReadMessage(r Requester, m *models.Message) bool {
	return m.SenderID == r.ID || m.ReceiverID == r.ID
}

// CanInsertMessage permits creation only when the sender is the requester.
func CanInsertMessage(r Requester, m *models.Message) bool {
	return m.SenderID == r.ID
}

// CanUpdateMessage permits only the receiver to update a message (the read
// flag), pre- and post-state.
func CanUpdateMessage(r Requester, old, new *models.Message) bool {
	return old.ReceiverID == r.ID && new.ReceiverID == r.ID
}

// Read post-filters. Rows failing the predicate are omitted, never an error.

// FilterProducts returns the subset of products visible to r.
func FilterProducts(r Requester, products []models.Product) []models.Product {
	visible := make([]models.Product, 0, len(products))
	for i := range products {
		if CanReadProduct(r, &products[i]) {
			visible = append(visible, products[i])
		}
	}
	return visible
}

// FilterOrders returns the subset of orders visible to r.
func FilterOrders(r Requester, orders []models.Order) []models.Order {
	visible := make([]models.Order, 0, len(orders))
	for i := range orders {
		if CanReadOrder(r, &orders[i]) {
			visible = append(visible, orders[i])
		}
	}
	return visible
}

// FilterMessages returns the subset of messages visible to r.
func FilterMessages(r Requester, messages []models.Message) []models.Message {
	visible := make([]models.Message, 0, len(messages))
	for i := range messages {
		if CanReadMessage(r, &messages[i]) {
			visible = append(visible, messages[i])
		}
	}
	return visible
}

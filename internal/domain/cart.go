package domain

// LineItem is one product entry in the cart. Identifiers are strings and are
// compared exactly, everywhere.
type LineItem struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	ImageURL       string `json:"image"`
	UnitPriceCents int64  `json:"price"`
	Quantity       int    `json:"quantity"`
}

// Snapshot is the full ordered list of line items. It is the unit of
// persistence and the unit fetched from the remote feed, serialized as
// {"items":[...]}.
type Snapshot struct {
	Items []LineItem `json:"items"`
}

// Aggregates are derived from the item list and never stored.
type Aggregates struct {
	SubtotalCents int64 `json:"subtotalCents"`
	ItemCount     int   `json:"itemCount"`
}

// Aggregates recomputes the subtotal and item count from scratch.
func (s *Snapshot) Aggregates() Aggregates {
	var agg Aggregates
	for _, item := range s.Items {
		agg.SubtotalCents += item.UnitPriceCents * int64(item.Quantity)
		agg.ItemCount += item.Quantity
	}
	return agg
}

// Find returns the line item with the given id, or nil.
func (s *Snapshot) Find(id string) *LineItem {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return &s.Items[i]
		}
	}
	return nil
}

// SetQuantity sets the quantity of the item with the given id, clamping to a
// minimum of 1. An unknown id is a no-op. Returns whether the snapshot
// changed.
func (s *Snapshot) SetQuantity(id string, quantity int) bool {
	item := s.Find(id)
	if item == nil {
		return false
	}
	if quantity < 1 {
		quantity = 1
	}
	if item.Quantity == quantity {
		return false
	}
	item.Quantity = quantity
	return true
}

// Remove deletes the item with the given id, preserving the order of the
// rest. An unknown id is a no-op. Returns whether the snapshot changed.
func (s *Snapshot) Remove(id string) bool {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Empty reports whether the cart holds no items.
func (s *Snapshot) Empty() bool {
	return len(s.Items) == 0
}

package controller

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"minicart/internal/checkout"
	"minicart/internal/domain"
	"minicart/internal/store"
	"minicart/internal/view"
)

// State of the interaction machine. ConfirmingRemoval means a pending
// removal is set and the confirmation modal is visible.
type State int

const (
	Idle State = iota
	ConfirmingRemoval
)

// ErrEmptyCart signals a checkout attempt on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

type cartSource interface {
	Obtain(ctx context.Context) (*domain.Snapshot, error)
}

type pendingRemoval struct {
	token  string
	itemID string
	title  string
}

// Controller owns the cart snapshot, the store, and the view bindings, and
// serializes user events: each mutation persists and recomputes aggregates
// before the next event is processed.
type Controller struct {
	mu       sync.Mutex
	snapshot domain.Snapshot
	loadErr  string
	pending  *pendingRemoval

	source      cartSource
	store       store.Store
	notifier    checkout.Notifier
	formatter   *view.Formatter
	checkoutURL string
	logger      *log.Logger
}

func New(source cartSource, st store.Store, notifier checkout.Notifier, formatter *view.Formatter, checkoutURL string, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	if notifier == nil {
		notifier = checkout.Nop{}
	}
	return &Controller{
		source:      source,
		store:       st,
		notifier:    notifier,
		formatter:   formatter,
		checkoutURL: checkoutURL,
		logger:      logger,
	}
}

// Load populates the cart model. On failure the error state is latched: the
// page shows an inline message, the model stays empty and nothing is
// persisted. A single attempt, no retry.
func (c *Controller) Load(ctx context.Context) error {
	snapshot, err := c.source.Obtain(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.snapshot = domain.Snapshot{}
		c.loadErr = "We could not load your cart. Please try again later."
		return err
	}
	c.snapshot = *snapshot
	c.loadErr = ""
	return nil
}

// ErrorState reports whether the last load failed.
func (c *Controller) ErrorState() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadErr != ""
}

// Page projects the current cart for a full render.
func (c *Controller) Page() view.Page {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loadErr != "" {
		return view.ErrorPage(c.loadErr, c.formatter)
	}
	page := view.Project(&c.snapshot, c.formatter)
	if c.pending != nil {
		page.Pending = &view.Pending{Token: c.pending.token, ID: c.pending.itemID, Title: c.pending.title}
	}
	return page
}

// State reports the interaction state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		return ConfirmingRemoval
	}
	return Idle
}

// Patch is the incremental view update after a mutation: the touched line
// (if any), the detached row (if any), and the recomputed aggregates.
type Patch struct {
	ItemID    string `json:"id,omitempty"`
	Quantity  int    `json:"quantity,omitempty"`
	LineTotal string `json:"lineTotal,omitempty"`
	RemovedID string `json:"removedId,omitempty"`
	Subtotal  string `json:"subtotal"`
	Total     string `json:"total"`
	ItemCount int    `json:"itemCount"`
	Empty     bool   `json:"empty"`
	Changed   bool   `json:"changed"`
}

// SetQuantity updates an item's quantity. Unknown ids are silently ignored;
// values below 1 are floored by the model, and a floor hit that leaves the
// quantity unchanged triggers no persistence write.
func (c *Controller) SetQuantity(ctx context.Context, itemID string, quantity int) Patch {
	c.mu.Lock()
	defer c.mu.Unlock()

	changed := c.snapshot.SetQuantity(itemID, quantity)
	if changed {
		c.persist(ctx)
	} else if c.snapshot.Find(itemID) == nil {
		c.logger.Printf("controller: quantity change for unknown item %q ignored", itemID)
	}

	patch := c.patchLocked()
	patch.Changed = changed
	if item := c.snapshot.Find(itemID); item != nil {
		patch.ItemID = item.ID
		patch.Quantity = item.Quantity
		patch.LineTotal = c.formatter.Format(item.UnitPriceCents * int64(item.Quantity))
	}
	return patch
}

// BeginRemoval moves to ConfirmingRemoval with the given item as the pending
// target. An unknown id is a no-op and the state stays as it was. A second
// begin while confirming retargets the modal.
func (c *Controller) BeginRemoval(itemID string) (*view.Pending, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item := c.snapshot.Find(itemID)
	if item == nil {
		c.logger.Printf("controller: removal of unknown item %q ignored", itemID)
		return nil, false
	}
	c.pending = &pendingRemoval{
		token:  uuid.NewString(),
		itemID: item.ID,
		title:  item.Title,
	}
	return &view.Pending{Token: c.pending.token, ID: c.pending.itemID, Title: c.pending.title}, true
}

// CancelRemoval clears the pending removal without mutating the cart. A
// token that does not match the current pending removal is ignored.
func (c *Controller) CancelRemoval(token string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil || c.pending.token != token {
		return false
	}
	c.pending = nil
	return true
}

// ConfirmRemoval removes the pending item, persists, recomputes, and returns
// to Idle. A stale token is ignored.
func (c *Controller) ConfirmRemoval(ctx context.Context, token string) (Patch, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.pending == nil || c.pending.token != token {
		return Patch{}, false
	}
	removedID := c.pending.itemID
	c.pending = nil

	if c.snapshot.Remove(removedID) {
		c.persist(ctx)
	}

	patch := c.patchLocked()
	patch.RemovedID = removedID
	patch.Changed = true
	return patch, true
}

// Checkout hands the cart off to the external checkout flow. An empty cart
// yields ErrEmptyCart and nothing else happens.
func (c *Controller) Checkout(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.snapshot.Empty() {
		return "", ErrEmptyCart
	}

	agg := c.snapshot.Aggregates()
	event := checkout.Event{
		Items:         append([]domain.LineItem(nil), c.snapshot.Items...),
		SubtotalCents: agg.SubtotalCents,
		ItemCount:     agg.ItemCount,
	}
	if err := c.notifier.CheckoutInitiated(ctx, event); err != nil {
		// The redirect is the handoff; the event is advisory.
		c.logger.Printf("controller: checkout event publish failed: %v", err)
	}
	return c.checkoutURL, nil
}

// persist writes through to the store. Storage failures are logged, never
// surfaced to the user.
func (c *Controller) persist(ctx context.Context) {
	if err := c.store.Save(ctx, &c.snapshot); err != nil {
		c.logger.Printf("controller: persist snapshot failed: %v", err)
	}
}

func (c *Controller) patchLocked() Patch {
	agg := c.snapshot.Aggregates()
	return Patch{
		Subtotal:  c.formatter.Format(agg.SubtotalCents),
		Total:     c.formatter.Format(agg.SubtotalCents),
		ItemCount: agg.ItemCount,
		Empty:     c.snapshot.Empty(),
	}
}

package domain

import "context"

// Basket is the ephemeral, session-scoped set of event selections that have
// not yet been persisted as registrations. It is owned by a single user
// session and never shared; operations on it are not goroutine safe.
type Basket struct {
	items []*Event
}

// NewBasket returns an empty basket.
func NewBasket() *Basket {
	return &Basket{}
}

// Items returns the candidates in insertion order. The returned slice must
// not be mutated by the caller.
func (b *Basket) Items() []*Event {
	return b.items
}

// Len returns the number of candidates in the basket.
func (b *Basket) Len() int {
	return len(b.items)
}

// Add appends a candidate. Validation happens in the signup service; Add
// itself does no checking.
func (b *Basket) Add(event *Event) {
	b.items = append(b.items, event)
}

// Remove drops the candidate with the given event ID, if present.
func (b *Basket) Remove(eventID string) {
	for i, item := range b.items {
		if item.ID == eventID {
			b.items = append(b.items[:i], b.items[i+1:]...)
			return
		}
	}
}

// Clear empties the basket. Called on checkout or abandonment.
func (b *Basket) Clear() {
	b.items = nil
}

// ValidationResult is the outcome of a conflict check. Reason is a
// human-readable message when Valid is false.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

// SignupService defines the attendee-facing selection and checkout flow.
type SignupService interface {
	// ValidateSelection checks candidate against the basket and the user's
	// persisted registrations. Read-only; mutates neither basket nor store.
	ValidateSelection(ctx context.Context, candidate *Event, basket *Basket, userID string) *ValidationResult
	// AddToBasket validates candidate and appends it to the basket on success.
	AddToBasket(ctx context.Context, candidate *Event, basket *Basket, userID string) (*ValidationResult, error)
	// Checkout persists one registration per basket item and clears the
	// basket. Idempotent per (user, event): already-registered items are
	// returned without creating duplicates.
	Checkout(ctx context.Context, basket *Basket, userID string, role Role) ([]*Registration, error)
	// ListMyRegistrations returns the user's registrations joined with events.
	ListMyRegistrations(ctx context.Context, userID string) ([]*RegistrationWithEvent, error)
}

package notifications

import (
	"slices"
	"time"
)

// Recognised notification types. Each maps to a preference flag; any other
// type string is accepted and gated by channel subscription only.
const (
	TypeOrderUpdates = "orderUpdates"
	TypePromotions   = "promotions"
	TypeAccount      = "account"
)

// Preferences holds per-type opt-in flags.
type Preferences struct {
	OrderUpdates bool `json:"orderUpdates" bson:"orderUpdates"`
	Promotions   bool `json:"promotions" bson:"promotions"`
	Account      bool `json:"account" bson:"account"`
}

// DefaultPreferences returns preferences with every type enabled.
func DefaultPreferences() Preferences {
	return Preferences{OrderUpdates: true, Promotions: true, Account: true}
}

// Lookup returns the flag for notifType and whether the type is recognised.
func (p Preferences) Lookup(notifType string) (enabled, recognized bool) {
	switch notifType {
	case TypeOrderUpdates:
		return p.OrderUpdates, true
	case TypePromotions:
		return p.Promotions, true
	case TypeAccount:
		return p.Account, true
	}
	return false, false
}

// PreferencesPatch carries a partial preferences update; nil fields are left unchanged.
type PreferencesPatch struct {
	OrderUpdates *bool `json:"orderUpdates,omitempty"`
	Promotions   *bool `json:"promotions,omitempty"`
	Account      *bool `json:"account,omitempty"`
}

// ApplyTo returns p with the provided keys overwritten.
func (pp PreferencesPatch) ApplyTo(p Preferences) Preferences {
	if pp.OrderUpdates != nil {
		p.OrderUpdates = *pp.OrderUpdates
	}
	if pp.Promotions != nil {
		p.Promotions = *pp.Promotions
	}
	if pp.Account != nil {
		p.Account = *pp.Account
	}
	return p
}

// fields maps every preference key to its patched value, or nil when omitted.
func (pp PreferencesPatch) fields() map[string]*bool {
	return map[string]*bool{
		TypeOrderUpdates: pp.OrderUpdates,
		TypePromotions:   pp.Promotions,
		TypeAccount:      pp.Account,
	}
}

// Subscription is a user's channel set and per-type preferences.
// There is at most one Subscription per UserID.
type Subscription struct {
	UserID      string      `json:"userId" bson:"userId"`
	Channels    []Channel   `json:"channels" bson:"channels"`
	Preferences Preferences `json:"preferences" bson:"preferences"`
	CreatedAt   time.Time   `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt" bson:"updatedAt"`
}

// HasChannel reports whether c is in the subscription's channel set.
func (s Subscription) HasChannel(c Channel) bool {
	return slices.Contains(s.Channels, c)
}

// emptySubscription stands in for a user that never subscribed.
func emptySubscription(userID string) Subscription {
	return Subscription{
		UserID:      userID,
		Channels:    []Channel{},
		Preferences: DefaultPreferences(),
	}
}

// SubscriptionInput is a create-or-update request.
// A nil Channels slice keeps the stored set; a non-nil one (even empty)
// replaces it. A nil Preferences keeps every stored flag.
type SubscriptionInput struct {
	UserID      string            `json:"userId"`
	Channels    []Channel         `json:"channels,omitempty"`
	Preferences *PreferencesPatch `json:"preferences,omitempty"`
}

// Merge applies the input on top of existing (nil for a new user) and stamps timestamps.
func (in SubscriptionInput) Merge(existing *Subscription, now time.Time) Subscription {
	var sub Subscription
	if existing != nil {
		sub = *existing
		sub.Channels = slices.Clone(existing.Channels)
	} else {
		sub = emptySubscription(in.UserID)
		sub.CreatedAt = now
	}

	if in.Channels != nil {
		sub.Channels = slices.Clone(in.Channels)
	}
	if in.Preferences != nil {
		sub.Preferences = in.Preferences.ApplyTo(sub.Preferences)
	}
	sub.UpdatedAt = now

	return sub
}

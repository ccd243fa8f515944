package notifications

import (
	"errors"
	"fmt"
)

var (
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidTransition    = errors.New("notification status cannot change")
	ErrPersistence          = errors.New("persistence failure")
	ErrDeliveryHandoff      = errors.New("delivery hand-off failed")
	ErrNoSender             = errors.New("no sender registered for channel")
	ErrMissingRecipient     = errors.New("notification content has no recipient")
)

// RejectedError is returned by Dispatch when eligibility denies a request.
type RejectedError struct {
	Reason Reason
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("notification rejected: %s", e.Reason)
}

// RejectionReason extracts the Reason from a RejectedError in err's chain.
func RejectionReason(err error) (Reason, bool) {
	var rej *RejectedError
	if errors.As(err, &rej) {
		return rej.Reason, true
	}
	return "", false
}

func persistenceError(err error) error {
	return errors.Join(ErrPersistence, err)
}

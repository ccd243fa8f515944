package notifications

// Reason explains why a dispatch request was rejected.
type Reason string

const (
	ReasonChannelNotSubscribed Reason = "channel_not_subscribed"
	ReasonTypeOptedOut         Reason = "type_opted_out"
)

// Decision is the outcome of Evaluate. Reason is empty when Allowed.
type Decision struct {
	Allowed bool
	Reason  Reason
}

// Evaluate decides whether req may be sent to the owner of sub.
// The channel check runs first; a recognised type must also be opted in,
// while unrecognised types pass on the channel check alone.
func Evaluate(req DispatchRequest, sub Subscription) Decision {
	if !sub.HasChannel(req.Channel) {
		return Decision{Reason: ReasonChannelNotSubscribed}
	}
	if enabled, recognized := sub.Preferences.Lookup(req.Type); recognized && !enabled {
		return Decision{Reason: ReasonTypeOptedOut}
	}
	return Decision{Allowed: true}
}

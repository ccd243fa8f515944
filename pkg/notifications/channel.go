package notifications

// Channel is a delivery medium a user can subscribe to.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// AllChannels returns every supported channel.
func AllChannels() []Channel {
	return []Channel{ChannelEmail, ChannelSMS, ChannelPush}
}

// Valid reports whether c is a supported channel.
func (c Channel) Valid() bool {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelPush:
		return true
	}
	return false
}

func (c Channel) String() string { return string(c) }

// uniqueChannels removes duplicates keeping first-occurrence order.
// A nil input stays nil so "omitted" survives normalisation.
func uniqueChannels(in []Channel) []Channel {
	if in == nil {
		return nil
	}
	out := make([]Channel, 0, len(in))
	seen := make(map[Channel]struct{}, len(in))
	for _, c := range in {
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}

package webhook

import "time"

// DeliveryResult describes a completed send attempt.
type DeliveryResult struct {
	StatusCode int
	Duration   time.Duration
	Success    bool
	Error      error
}

// DeliveryHook observes every send attempt.
type DeliveryHook func(result DeliveryResult)

type sendOptions struct {
	timeout         time.Duration
	headers         map[string]string
	signatureSecret string
	onDelivery      DeliveryHook
}

func defaultSendOptions() *sendOptions {
	return &sendOptions{
		timeout: 10 * time.Second,
		headers: make(map[string]string),
	}
}

// SendOption configures a single Send call.
type SendOption func(*sendOptions)

// WithTimeout bounds the request duration. Non-positive values are ignored.
func WithTimeout(timeout time.Duration) SendOption {
	return func(o *sendOptions) {
		if timeout > 0 {
			o.timeout = timeout
		}
	}
}

func WithHeader(key, value string) SendOption {
	return func(o *sendOptions) {
		o.headers[key] = value
	}
}

// WithSignature signs the payload with HMAC-SHA256 and adds the X-Webhook-* headers.
func WithSignature(secret string) SendOption {
	return func(o *sendOptions) {
		o.signatureSecret = secret
	}
}

func WithOnDelivery(hook DeliveryHook) SendOption {
	return func(o *sendOptions) {
		o.onDelivery = hook
	}
}

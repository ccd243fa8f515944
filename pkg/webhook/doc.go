// Package webhook posts signed JSON payloads to HTTP endpoints.
//
// The notification service uses it to hand SMS and push notifications to
// external gateways. Each Send performs exactly one attempt; the caller records
// the outcome. Payloads can be signed with WithSignature, producing
// X-Webhook-Signature, X-Webhook-Timestamp and X-Webhook-ID headers that the
// receiver checks with VerifySignature.
package webhook

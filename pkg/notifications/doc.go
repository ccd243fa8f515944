// Package notifications implements per-user notification subscriptions and
// preference-gated dispatch.
//
// A Subscription holds the channels a user is enrolled in (email, sms, push)
// and per-type opt-in flags. SubscriptionManager validates and upserts them
// with merge semantics: provided channels replace the stored set, provided
// preference keys overwrite individually, everything else is kept.
//
// Dispatcher runs every DispatchRequest through Evaluate. A rejected request
// returns a *RejectedError and never creates a record. An allowed request is
// stored as a pending Notification and handed to a Deliverer; the outcome is
// reported later through RecordOutcome, which moves the record to sent or
// failed exactly once.
//
// Storage backends are provided for memory and MongoDB, with an optional Redis
// read-through cache for subscriptions. QueueDeliverer and NewDeliveryHandler
// connect the dispatcher to the queue package so that delivery through the
// channel Senders happens asynchronously.
package notifications

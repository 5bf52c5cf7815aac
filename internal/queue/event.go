// Package queue carries account events over RabbitMQ: a publisher used by
// the auth service and a consumer that keeps an append-only audit log.
package queue

import "time"

// AccountQueue is the durable queue holding account events.
const AccountQueue = "account.events"

// Account event types.
const (
	EventRegistered      = "user.registered"
	EventLoggedIn        = "user.logged_in"
	EventLoggedOut       = "user.logged_out"
	EventTokensRefreshed = "tokens.refreshed"
	EventPromoted        = "user.promoted"
)

// AccountEvent is published after a successful account operation.  It
// carries enough to audit the change without reading the database.
type AccountEvent struct {
	Type       string    `json:"type"`
	UserID     uint      `json:"userId"`
	Email      string    `json:"email"`
	OccurredAt time.Time `json:"occurredAt"`
}

// NewAccountEvent stamps an event with the current UTC time.
func NewAccountEvent(typ string, userID uint, email string) AccountEvent {
	return AccountEvent{Type: typ, UserID: userID, Email: email, OccurredAt: time.Now().UTC()}
}

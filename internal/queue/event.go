// Package queue defines message payloads exchanged over the message broker.
package queue

// OrderCompletedEvent is published after a checkout commits.  It
// carries enough information for downstream consumers to log, notify
// or feed analytics without querying the primary database.  Total is
// the exact decimal total rendered with two fractional digits.
type OrderCompletedEvent struct {
	OrderID         uint64 `json:"order_id"`
	UserID          uint64 `json:"user_id"`
	SessionTypeID   uint64 `json:"session_type_id"`
	SessionTypeName string `json:"session_type"`
	Total           string `json:"total"`
	ItemCount       int    `json:"item_count"`
	CompletedAt     string `json:"completed_at"`
}

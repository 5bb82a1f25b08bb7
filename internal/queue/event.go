// Package queue defines the lifecycle events exchanged over the message
// broker, the publisher used by the engine after each commit and the
// audit consumer that records them.
package queue

import "time"

// QueueName is the durable queue carrying lifecycle events.
const QueueName = "performance.lifecycle"

// Event types.
const (
	TypePerformanceCreated            = "performance.created"
	TypePerformanceReconfirmRequested = "performance.reconfirm_requested"
	TypePerformanceReconfirmed        = "performance.reconfirmed"
	TypePerformanceDeclined           = "performance.declined"
	TypePerformanceCanceled           = "performance.canceled"
)

// PerformanceEvent is published once a lifecycle transition has
// committed.  It carries enough for downstream consumers to audit the
// change without querying the primary database.
type PerformanceEvent struct {
	Type          string    `json:"type"`
	PerformanceID string    `json:"performance_id"`
	EventID       string    `json:"event_id"`
	ActID         string    `json:"act_id"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason,omitempty"`
	ActorID       string    `json:"actor_id"`
	OccurredAt    time.Time `json:"occurred_at"`
}

package event

import "time"

// Type classifies what happened to a dataset.
type Type string

const (
	TypeUpdated Type = "updated" // authoritative data re-synced
	TypeLocal   Type = "local"   // optimistic local change, not yet confirmed
)

// Event notifies subscribers that a named dataset changed. Payload carries
// the changed record when the publisher has one; subscribers that need the
// full collection should re-load it.
type Event struct {
	Dataset string
	Type    Type
	Payload any
	At      time.Time
}

// Handler consumes events for a dataset. Handlers must be idempotent: a
// single publish may reach a handler more than once across re-syncs.
type Handler func(Event)

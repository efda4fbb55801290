package sim

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventTypeTick              // Tick boundary
	EventTypeBodySpawn
	EventTypeMerge
	EventTypeBodyRejected // Body quarantined for non-finite state
	EventTypeSeed
)

// EventVersion for backwards compatibility in replay
const EventVersion uint8 = 1

// Event is the core event structure for the event log
type Event struct {
	Version   uint8     `json:"version"`   // Schema version
	Type      EventType `json:"type"`      // Event type
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Monotonic sequence
	TickNum   uint64    `json:"tickNum"`   // Simulation tick this occurred in
	SourceID  string    `json:"sourceId"`  // Originating body (for rate limiting)
	Payload   []byte    `json:"payload"`   // JSON-encoded payload
}

// String returns human-readable event type
func (t EventType) String() string {
	switch t {
	case EventTypeTick:
		return "tick"
	case EventTypeBodySpawn:
		return "body_spawn"
	case EventTypeMerge:
		return "merge"
	case EventTypeBodyRejected:
		return "body_rejected"
	case EventTypeSeed:
		return "seed"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// TickPayload contains tick boundary information
type TickPayload struct {
	BodyCount   int   `json:"bodyCount"`
	MergeCount  int   `json:"mergeCount"`
	Deferred    int   `json:"deferred"`
	DeltaTimeNs int64 `json:"deltaTimeNs"`
}

// SpawnPayload contains body creation details
type SpawnPayload struct {
	BodyID   uint64   `json:"bodyId"`
	Kind     BodyKind `json:"kind"`
	Mass     float64  `json:"mass"`
	Radius   float64  `json:"radius"`
	IsStatic bool     `json:"isStatic"`
	Position Vec3     `json:"position"`
}

// MergePayload contains merge resolution details
type MergePayload struct {
	SurvivorID      uint64  `json:"survivorId"`
	AbsorbedID      uint64  `json:"absorbedId"`
	MassTransferred float64 `json:"massTransferred"`
	SurvivorMass    float64 `json:"survivorMass"`
}

// RejectPayload explains why a body was quarantined for a tick
type RejectPayload struct {
	BodyID uint64 `json:"bodyId"`
	Reason string `json:"reason"`
}

// SeedPayload records a deterministic galaxy seeding run
type SeedPayload struct {
	Seed      int64 `json:"seed"`
	BodyCount int   `json:"bodyCount"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, sourceID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		SourceID:  sourceID,
		Payload:   EncodePayload(payload),
	}
}

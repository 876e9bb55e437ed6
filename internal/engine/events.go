package engine

import "time"

// EventType represents the kind of engine event.
type EventType string

const (
	EventTrackReplaced   EventType = "TRACK_REPLACED"
	EventSamplesDropped  EventType = "SAMPLES_DROPPED"
	EventDecimated       EventType = "DECIMATED"
	EventStationAdded    EventType = "STATION_ADDED"
	EventStationRemoved  EventType = "STATION_REMOVED"
	EventStationEdited   EventType = "STATION_EDITED"
	EventStationOmitted  EventType = "STATION_OMITTED"
	EventDegenerateTrack EventType = "DEGENERATE_TRACK"
	EventRecompute       EventType = "RECOMPUTE"

	EventValidationRejected EventType = "VALIDATION_REJECTED"
)

// Event is one entry in the engine's activity log.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Station   string    `json:"station,omitempty"`
	Message   string    `json:"message"`
}

// eventLog is a fixed-size ring buffer of events.
type eventLog struct {
	events  []Event
	max     int
	writeAt int
}

func newEventLog(max int) *eventLog {
	if max <= 0 {
		max = DefaultMaxEvents
	}
	return &eventLog{events: make([]Event, 0, max), max: max}
}

// add appends an event, overwriting the oldest once full.
func (l *eventLog) add(e Event) {
	if len(l.events) < l.max {
		l.events = append(l.events, e)
		return
	}
	l.events[l.writeAt] = e
	l.writeAt = (l.writeAt + 1) % l.max
}

// ordered returns a copy of the events, oldest first.
func (l *eventLog) ordered() []Event {
	if len(l.events) == 0 {
		return nil
	}

	if len(l.events) < l.max {
		result := make([]Event, len(l.events))
		copy(result, l.events)
		return result
	}

	// Buffer is full, reorder from oldest to newest
	result := make([]Event, l.max)
	for i := 0; i < l.max; i++ {
		result[i] = l.events[(l.writeAt+i)%l.max]
	}
	return result
}

// last returns the newest n events, oldest first.
func (l *eventLog) last(n int) []Event {
	all := l.ordered()
	if n < 0 || len(all) <= n {
		return all
	}
	return all[len(all)-n:]
}

package domain

import "encoding/json"

// EventType identifies a push-channel message.
type EventType string

const (
	EventConnected         EventType = "CONNECTED"
	EventEmergencySignal   EventType = "EMERGENCY_SIGNAL"
	EventEmergencyResolved EventType = "EMERGENCY_RESOLVED"
)

// Envelope is the push-channel wire format. Data stays raw so that clients
// decode only the event types they subscribed to.
type Envelope struct {
	Type EventType       `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// SignalEvent is the Data payload of EMERGENCY_SIGNAL and EMERGENCY_RESOLVED.
// User carries minimal issuer identity and is set on creation events only.
type SignalEvent struct {
	EmergencySignal
	User *PublicUser `json:"user,omitempty"`
}

func NewConnectedEnvelope() Envelope {
	return Envelope{Type: EventConnected}
}

func NewSignalEnvelope(signal EmergencySignal, user PublicUser) (Envelope, error) {
	data, err := json.Marshal(SignalEvent{EmergencySignal: signal, User: &user})
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: EventEmergencySignal, Data: data}, nil
}

func NewResolvedEnvelope(signal EmergencySignal) (Envelope, error) {
	data, err := json.Marshal(SignalEvent{EmergencySignal: signal})
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{Type: EventEmergencyResolved, Data: data}, nil
}

// DecodeSignalEvent parses the payload of an emergency envelope.
func DecodeSignalEvent(env Envelope) (SignalEvent, error) {
	var ev SignalEvent
	err := json.Unmarshal(env.Data, &ev)
	return ev, err
}

package domain

import "time"

// EmergencySignal is a civilian distress event. Active and ResolvedAt move
// together: a signal is active exactly while ResolvedAt is nil, and resolution
// is terminal.
type EmergencySignal struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"userId"`
	Active     bool       `json:"active"`
	Latitude   string     `json:"latitude"`
	Longitude  string     `json:"longitude"`
	CreatedAt  time.Time  `json:"createdAt"`
	ResolvedAt *time.Time `json:"resolvedAt"`
}

type CreateEmergencySignalRequest struct {
	Latitude  string `json:"latitude" validate:"required,latstr"`
	Longitude string `json:"longitude" validate:"required,lngstr"`
	Active    bool   `json:"active"`
}

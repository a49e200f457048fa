package domain

import "time"

type TeamStatus string

const (
	TeamAvailable TeamStatus = "available"
	TeamAssigned  TeamStatus = "assigned"
	TeamEnRoute   TeamStatus = "en_route"
	TeamOnScene   TeamStatus = "on_scene"
)

func (s TeamStatus) Valid() bool {
	switch s {
	case TeamAvailable, TeamAssigned, TeamEnRoute, TeamOnScene:
		return true
	}
	return false
}

type Team struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Type      string     `json:"type"`
	Members   []int64    `json:"members"`
	Status    TeamStatus `json:"status"`
	Latitude  string     `json:"latitude"`
	Longitude string     `json:"longitude"`
	CreatedAt time.Time  `json:"createdAt"`
}

type CreateTeamRequest struct {
	Name      string  `json:"name" validate:"required"`
	Type      string  `json:"type" validate:"required"`
	Members   []int64 `json:"members"`
	Latitude  string  `json:"latitude" validate:"omitempty,latstr"`
	Longitude string  `json:"longitude" validate:"omitempty,lngstr"`
}

type UpdateTeamStatusRequest struct {
	Status TeamStatus `json:"status" validate:"required,oneof=available assigned en_route on_scene"`
}

package domain

import "time"

type ReportStatus string

const (
	ReportPending    ReportStatus = "pending"
	ReportInProgress ReportStatus = "in_progress"
	ReportResolved   ReportStatus = "resolved"
)

func (s ReportStatus) Valid() bool {
	switch s {
	case ReportPending, ReportInProgress, ReportResolved:
		return true
	}
	return false
}

// CrimeReport keeps both the incident timestamp (Date) and submission
// timestamps. AssignedTeam is non-nil only for reports that have left the
// pending state.
type CrimeReport struct {
	ID           int64        `json:"id"`
	UserID       int64        `json:"userId"`
	CrimeType    string       `json:"crimeType"`
	Description  string       `json:"description"`
	Location     string       `json:"location"`
	Latitude     string       `json:"latitude"`
	Longitude    string       `json:"longitude"`
	Date         time.Time    `json:"date"`
	Status       ReportStatus `json:"status"`
	Evidence     []string     `json:"evidence"`
	AssignedTeam *int64       `json:"assignedTeam"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

type CreateReportRequest struct {
	CrimeType   string    `json:"crimeType" validate:"required"`
	Description string    `json:"description" validate:"required"`
	Location    string    `json:"location" validate:"required"`
	Latitude    string    `json:"latitude" validate:"required,latstr"`
	Longitude   string    `json:"longitude" validate:"required,lngstr"`
	Date        time.Time `json:"date" validate:"required"`
	Evidence    []string  `json:"evidence"`
}

type UpdateReportStatusRequest struct {
	Status ReportStatus `json:"status" validate:"required,oneof=pending in_progress resolved"`
}

type AssignTeamRequest struct {
	TeamID int64 `json:"teamId" validate:"required,min=1"`
}

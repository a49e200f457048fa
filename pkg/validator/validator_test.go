package validator_test

import (
	"testing"

	"crimewatch/internal/domain"
	"crimewatch/pkg/validator"
)

func TestValidateStruct_CoordinateStrings(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		lat     string
		lng     string
		wantErr bool
	}{
		{"valid", "40.7128", "-74.0060", false},
		{"boundaries", "-90", "180", false},
		{"integerish", "0", "0", false},
		{"lat_too_big", "90.0001", "0", true},
		{"lat_too_small", "-90.1", "0", true},
		{"lng_too_big", "0", "180.5", true},
		{"lng_too_small", "0", "-181", true},
		{"lat_not_a_number", "forty", "0", true},
		{"lat_nan", "NaN", "0", true},
		{"lng_inf", "0", "+Inf", true},
		{"empty_lat", "", "0", true},
	}

	for _, c := range cases {
		c := c
		t.Run(c.name, func(t *testing.T) {
			t.Parallel()

			req := domain.CreateEmergencySignalRequest{
				Latitude:  c.lat,
				Longitude: c.lng,
			}
			err := validator.ValidateStruct(&req)
			if c.wantErr && err == nil {
				t.Fatalf("expected validation error for lat=%q lng=%q", c.lat, c.lng)
			}
			if !c.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestValidateStruct_ReportStatus(t *testing.T) {
	t.Parallel()

	ok := domain.UpdateReportStatusRequest{Status: domain.ReportInProgress}
	if err := validator.ValidateStruct(&ok); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	bad := domain.UpdateReportStatusRequest{Status: "escalated"}
	if err := validator.ValidateStruct(&bad); err == nil {
		t.Fatalf("expected validation error for unknown status")
	}
}

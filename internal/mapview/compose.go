package mapview

import (
	"fmt"

	"crimewatch/internal/domain"
)

// Snapshot is one consistent view of the three marker sources.
type Snapshot struct {
	Reports []domain.CrimeReport
	Signals []domain.EmergencySignal
	Teams   []domain.Team
}

// Filters are the per-source visibility toggles.
type Filters struct {
	ShowCrimes      bool
	ShowEmergencies bool
	ShowTeams       bool
}

func AllVisible() Filters {
	return Filters{ShowCrimes: true, ShowEmergencies: true, ShowTeams: true}
}

// Desired holds the per-kind marker lists a snapshot composes to.
type Desired struct {
	Crimes      []MarkerInput
	Emergencies []MarkerInput
	Teams       []MarkerInput
}

// Compose turns a snapshot into desired marker state. A disabled source
// composes to an empty list, so reconciling it removes that kind's markers
// rather than leaving them behind.
func Compose(snap Snapshot, filters Filters) Desired {
	var d Desired

	if filters.ShowCrimes {
		d.Crimes = make([]MarkerInput, 0, len(snap.Reports))
		for _, rep := range snap.Reports {
			d.Crimes = append(d.Crimes, MarkerInput{
				Key:       Key{Kind: KindCrime, ID: rep.ID},
				Latitude:  rep.Latitude,
				Longitude: rep.Longitude,
				Style:     Classify(rep.CrimeType),
				Label:     fmt.Sprintf("%s: %s", rep.CrimeType, rep.Location),
			})
		}
	} else {
		d.Crimes = []MarkerInput{}
	}

	if filters.ShowEmergencies {
		d.Emergencies = make([]MarkerInput, 0, len(snap.Signals))
		for _, sig := range snap.Signals {
			d.Emergencies = append(d.Emergencies, MarkerInput{
				Key:       Key{Kind: KindEmergency, ID: sig.ID},
				Latitude:  sig.Latitude,
				Longitude: sig.Longitude,
				Style:     styleEmergency,
				Label:     fmt.Sprintf("Emergency #%d", sig.ID),
			})
		}
	} else {
		d.Emergencies = []MarkerInput{}
	}

	if filters.ShowTeams {
		d.Teams = make([]MarkerInput, 0, len(snap.Teams))
		for _, team := range snap.Teams {
			d.Teams = append(d.Teams, MarkerInput{
				Key:       Key{Kind: KindTeam, ID: team.ID},
				Latitude:  team.Latitude,
				Longitude: team.Longitude,
				Style:     styleTeam,
				Label:     fmt.Sprintf("%s (%s)", team.Name, team.Status),
			})
		}
	} else {
		d.Teams = []MarkerInput{}
	}

	return d
}

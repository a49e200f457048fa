package mapview

import (
	"log/slog"
	"math"
	"strconv"
)

// SourceKind names one of the three marker sources on the map.
type SourceKind string

const (
	KindCrime     SourceKind = "crime"
	KindEmergency SourceKind = "emergency"
	KindTeam      SourceKind = "team"
)

// Key identifies a marker across refreshes. Kinds never collide even when the
// underlying ids do.
type Key struct {
	Kind SourceKind
	ID   int64
}

// MarkerInput is a desired marker before coordinate parsing. Latitude and
// Longitude are the decimal strings from the wire.
type MarkerInput struct {
	Key       Key
	Latitude  string
	Longitude string
	Style     Style
	Label     string
}

// Marker is a placed marker with parsed coordinates.
type Marker struct {
	Key   Key
	Lat   float64
	Lng   float64
	Style Style
	Label string
}

// Renderer receives marker lifecycle calls from the registry. Whatever draws
// the map implements it; tests record the calls.
type Renderer interface {
	Create(m Marker)
	Update(m Marker)
	Remove(k Key)
}

// Registry owns the placed markers and reconciles them against desired state,
// one source kind at a time. It is not safe for concurrent use; MapView
// serializes access.
type Registry struct {
	logger   *slog.Logger
	renderer Renderer
	markers  map[Key]*Marker
}

func NewRegistry(renderer Renderer, logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger,
		renderer: renderer,
		markers:  make(map[Key]*Marker),
	}
}

// Reconcile drives the placed markers of one kind to match desired. Present
// keys are updated in place, missing ones created, stale ones removed. Inputs
// with unparseable or non-finite coordinates are skipped and their markers,
// if any, removed with the rest of the stale set. Other kinds are never
// touched.
func (r *Registry) Reconcile(kind SourceKind, desired []MarkerInput) {
	seen := make(map[Key]struct{}, len(desired))

	for _, in := range desired {
		if in.Key.Kind != kind {
			continue
		}
		lat, lng, ok := parseCoords(in.Latitude, in.Longitude)
		if !ok {
			r.logger.Debug("skipping marker with bad coordinates",
				slog.String("kind", string(kind)),
				slog.Int64("id", in.Key.ID),
				slog.String("lat", in.Latitude),
				slog.String("lng", in.Longitude))
			continue
		}
		seen[in.Key] = struct{}{}

		if m, ok := r.markers[in.Key]; ok {
			if m.Lat == lat && m.Lng == lng && m.Style == in.Style && m.Label == in.Label {
				continue
			}
			m.Lat, m.Lng = lat, lng
			m.Style = in.Style
			m.Label = in.Label
			r.renderer.Update(*m)
			continue
		}

		m := &Marker{Key: in.Key, Lat: lat, Lng: lng, Style: in.Style, Label: in.Label}
		r.markers[in.Key] = m
		r.renderer.Create(*m)
	}

	for k := range r.markers {
		if k.Kind != kind {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		delete(r.markers, k)
		r.renderer.Remove(k)
	}
}

// Len reports the number of placed markers across all kinds.
func (r *Registry) Len() int { return len(r.markers) }

func parseCoords(latStr, lngStr string) (lat, lng float64, ok bool) {
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil || math.IsNaN(lat) || math.IsInf(lat, 0) {
		return 0, 0, false
	}
	lng, err = strconv.ParseFloat(lngStr, 64)
	if err != nil || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return 0, 0, false
	}
	return lat, lng, true
}

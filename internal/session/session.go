// Package session keeps per-user state: the user location, the distance
// annotations computed so far and the places currently being refined.
package session

import (
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/UnknownOlympus/wayfarer/internal/geo"
	"github.com/UnknownOlympus/wayfarer/internal/models"
)

var (
	// ErrSessionNotFound is returned for unknown or expired session ids.
	ErrSessionNotFound = errors.New("session not found")
	// ErrLocationAlreadySet is returned when the location of a session is set twice.
	ErrLocationAlreadySet = errors.New("location already set")
	// ErrRefineInFlight is returned when a place is already being refined in the session.
	ErrRefineInFlight = errors.New("refinement already in flight")
)

// Session is the state of one user. It is safe for concurrent use.
type Session struct {
	id string

	mu          sync.Mutex
	location    *models.Coordinates
	annotations map[string]models.DistanceAnnotation
	inFlight    map[string]struct{}
}

func newSession(id string) *Session {
	return &Session{
		id:          id,
		annotations: make(map[string]models.DistanceAnnotation),
		inFlight:    make(map[string]struct{}),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// SetLocation records the user location. It can be set only once.
func (s *Session) SetLocation(coords models.Coordinates) error {
	if err := geo.Validate(coords); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.location != nil {
		return ErrLocationAlreadySet
	}
	s.location = &coords

	return nil
}

// Location returns a copy of the user location, or nil when it is unknown.
func (s *Session) Location() *models.Coordinates {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.location == nil {
		return nil
	}
	coords := *s.location

	return &coords
}

// Annotate stores the annotations of places, replacing previous ones for the same names.
func (s *Session) Annotate(places ...models.Place) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, place := range places {
		if place.Distance != nil {
			s.annotations[place.Name] = *place.Distance
		}
	}
}

// Annotations returns a copy of the annotations keyed by place name.
func (s *Session) Annotations() map[string]models.DistanceAnnotation {
	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.annotations)
}

// Apply returns places with the session annotations attached. The input is not modified.
func (s *Session) Apply(places []models.Place) []models.Place {
	annotations := s.Annotations()

	out := make([]models.Place, len(places))
	for idx, place := range places {
		if ann, ok := annotations[place.Name]; ok {
			place = place.WithDistance(ann)
		}
		out[idx] = place
	}

	return out
}

// BeginRefine marks name as being refined. It fails with ErrRefineInFlight when a
// refinement of the same place has not ended yet.
func (s *Session) BeginRefine(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.inFlight[name]; busy {
		return fmt.Errorf("%w: %s", ErrRefineInFlight, name)
	}
	s.inFlight[name] = struct{}{}

	return nil
}

// EndRefine clears the in-flight mark set by BeginRefine.
func (s *Session) EndRefine(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.inFlight, name)
}

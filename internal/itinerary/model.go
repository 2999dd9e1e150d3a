// README: Trip request and itinerary result types.
package itinerary

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire and prompt format for trip dates.
const DateLayout = "2006-01-02"

// TripRequest carries the submitted form. It is consumed once by Service.Generate.
type TripRequest struct {
	Source         string
	Destination    string
	StartDate      time.Time
	EndDate        time.Time
	Budget         string
	Travelers      string
	Interests      string
	IncludeFlights bool
}

// Validate checks that every field is present and the dates are ordered.
func (r TripRequest) Validate() error {
	required := []struct {
		name, value string
	}{
		{"source", r.Source},
		{"destination", r.Destination},
		{"budget", r.Budget},
		{"travelers", r.Travelers},
		{"interests", r.Interests},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: missing %s", ErrInvalidRequest, f.name)
		}
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return fmt.Errorf("%w: missing dates", ErrInvalidRequest)
	}
	if r.EndDate.Before(r.StartDate) {
		return fmt.Errorf("%w: end date before start date", ErrInvalidRequest)
	}
	return nil
}

// Result is the generated markdown, returned verbatim from the model.
type Result struct {
	Text string
}

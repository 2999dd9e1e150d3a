package flighttable

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/spf13/cast"

	"wayfarer/internal/flights"
)

// Echoed blocks come back from the model, which may rewrite 335 as 335.0 or
// "335". The wire types below read each field on its own so one unreadable
// value clears that field instead of the whole record.

// looseInt holds a non-negative whole number read from a JSON number,
// float or numeric string. ok is false when the value could not be used.
type looseInt struct {
	value int
	ok    bool
	set   bool
}

func (n *looseInt) UnmarshalJSON(b []byte) error {
	n.set = true
	var v any
	if err := json.Unmarshal(b, &v); err != nil || v == nil {
		return nil
	}
	if s, isString := v.(string); isString {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		v = strings.TrimSpace(s)
	}
	if _, isBool := v.(bool); isBool {
		return nil
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return nil
	}
	n.value = int(math.Round(f))
	n.ok = true
	return nil
}

// rejected reports a field that was present but unusable.
func (n looseInt) rejected() bool { return n.set && !n.ok }

// looseString accepts strings and numbers; anything else reads as empty.
type looseString string

func (s *looseString) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil
	}
	switch v.(type) {
	case string, float64:
		*s = looseString(strings.TrimSpace(cast.ToString(v)))
	}
	return nil
}

type wireAirport struct {
	ID   looseString `json:"id"`
	Name looseString `json:"name"`
	Time looseString `json:"time"`
}

type wireLeg struct {
	DepartureAirport wireAirport `json:"departure_airport"`
	ArrivalAirport   wireAirport `json:"arrival_airport"`
	Duration         looseInt    `json:"duration"`
	Airline          looseString `json:"airline"`
	AirlineLogo      looseString `json:"airline_logo"`
	FlightNumber     looseString `json:"flight_number"`
	Airplane         looseString `json:"airplane"`
	TravelClass      looseString `json:"travel_class"`
}

type wireLayover struct {
	ID       looseString `json:"id"`
	Name     looseString `json:"name"`
	Duration looseInt    `json:"duration"`
}

type wireRecord struct {
	Flights       []json.RawMessage `json:"flights"`
	Layovers      []json.RawMessage `json:"layovers"`
	TotalDuration looseInt          `json:"total_duration"`
	Price         looseInt          `json:"price"`
	Type          looseString       `json:"type"`
	AirlineLogo   looseString       `json:"airline_logo"`
	BookingToken  looseString       `json:"booking_token"`
}

// decodeRecord reads one echoed record. It fails only when the record has no
// legs or a leg cannot name both airports; other unusable fields are zeroed
// and counted in dropped.
func decodeRecord(item json.RawMessage) (rec flights.Record, dropped int, err error) {
	var w wireRecord
	if err := json.Unmarshal(item, &w); err != nil {
		return flights.Record{}, 0, err
	}
	if len(w.Flights) == 0 {
		return flights.Record{}, 0, errNoLegs
	}

	for i, raw := range w.Flights {
		var l wireLeg
		if err := json.Unmarshal(raw, &l); err != nil {
			return flights.Record{}, 0, legError(i, "unreadable leg")
		}
		if l.DepartureAirport.ID == "" || l.ArrivalAirport.ID == "" {
			return flights.Record{}, 0, legError(i, "missing airport id")
		}
		if l.Duration.rejected() {
			dropped++
		}
		rec.Flights = append(rec.Flights, flights.Leg{
			DepartureAirport: l.DepartureAirport.toAirport(),
			ArrivalAirport:   l.ArrivalAirport.toAirport(),
			Duration:         l.Duration.value,
			Airline:          string(l.Airline),
			AirlineLogo:      string(l.AirlineLogo),
			FlightNumber:     string(l.FlightNumber),
			Airplane:         string(l.Airplane),
			TravelClass:      string(l.TravelClass),
		})
	}

	for _, raw := range w.Layovers {
		var l wireLayover
		if err := json.Unmarshal(raw, &l); err != nil {
			dropped++
			continue
		}
		if l.Duration.rejected() {
			dropped++
		}
		rec.Layovers = append(rec.Layovers, flights.Layover{
			ID:       string(l.ID),
			Name:     string(l.Name),
			Duration: l.Duration.value,
		})
	}

	if w.TotalDuration.rejected() {
		dropped++
	}
	if w.Price.rejected() {
		dropped++
	}
	rec.TotalDuration = w.TotalDuration.value
	rec.Price = w.Price.value
	rec.Type = string(w.Type)
	rec.AirlineLogo = string(w.AirlineLogo)
	rec.BookingToken = string(w.BookingToken)
	return rec, dropped, nil
}

func (a wireAirport) toAirport() flights.Airport {
	return flights.Airport{ID: string(a.ID), Name: string(a.Name), Time: string(a.Time)}
}

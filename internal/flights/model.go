// README: Flight search result shapes, shared by the lookup client, the prompt and the table extractor.
package flights

import "time"

// Airport is one end of a leg. Time is the local "YYYY-MM-DD HH:MM" string from the API.
type Airport struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Time string `json:"time"`
}

// Leg is a single flight segment.
type Leg struct {
	DepartureAirport Airport `json:"departure_airport"`
	ArrivalAirport   Airport `json:"arrival_airport"`
	Duration         int     `json:"duration"`
	Airline          string  `json:"airline"`
	AirlineLogo      string  `json:"airline_logo,omitempty"`
	FlightNumber     string  `json:"flight_number"`
	Airplane         string  `json:"airplane,omitempty"`
	TravelClass      string  `json:"travel_class,omitempty"`
}

type Layover struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

// Record is one priced flight option made of one or more legs.
// Durations are in minutes.
type Record struct {
	Flights       []Leg     `json:"flights"`
	Layovers      []Layover `json:"layovers,omitempty"`
	TotalDuration int       `json:"total_duration"`
	Price         int       `json:"price"`
	Type          string    `json:"type,omitempty"`
	AirlineLogo   string    `json:"airline_logo,omitempty"`
	BookingToken  string    `json:"booking_token,omitempty"`
}

// Airline returns the carrier of the first leg.
func (r Record) Airline() string {
	if len(r.Flights) == 0 {
		return ""
	}
	return r.Flights[0].Airline
}

// Departure is where the first leg leaves from.
func (r Record) Departure() Airport {
	if len(r.Flights) == 0 {
		return Airport{}
	}
	return r.Flights[0].DepartureAirport
}

// Arrival is where the last leg lands.
func (r Record) Arrival() Airport {
	if len(r.Flights) == 0 {
		return Airport{}
	}
	return r.Flights[len(r.Flights)-1].ArrivalAirport
}

// Query is a one-way search for a single date.
type Query struct {
	Origin      string
	Destination string
	Date        time.Time
}

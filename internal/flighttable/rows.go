package flighttable

import (
	"fmt"

	"github.com/samber/lo"

	"wayfarer/internal/flights"
)

// LegCell is one stacked segment inside a table row.
type LegCell struct {
	FlightNumber string `json:"flight_number"`
	From         string `json:"from"`
	To           string `json:"to"`
	Departs      string `json:"departs"`
	Arrives      string `json:"arrives"`
}

// Row is one flight option ready for display.
type Row struct {
	Airline      string    `json:"airline"`
	AirlineLogo  string    `json:"airline_logo,omitempty"`
	Legs         []LegCell `json:"legs"`
	Duration     string    `json:"duration"`
	Layovers     string    `json:"layovers,omitempty"`
	Price        string    `json:"price"`
	BookingToken string    `json:"booking_token,omitempty"`
}

var currencySymbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"GBP": "£",
	"INR": "₹",
	"JPY": "¥",
	"VND": "₫",
}

// Rows formats one row per record; multi-leg records keep their legs in order.
func Rows(records []flights.Record, currency string) []Row {
	return lo.Map(records, func(r flights.Record, _ int) Row {
		logo := r.AirlineLogo
		if logo == "" && len(r.Flights) > 0 {
			logo = r.Flights[0].AirlineLogo
		}
		return Row{
			Airline:     r.Airline(),
			AirlineLogo: logo,
			Legs: lo.Map(r.Flights, func(l flights.Leg, _ int) LegCell {
				return LegCell{
					FlightNumber: l.FlightNumber,
					From:         fmt.Sprintf("%s (%s)", l.DepartureAirport.Name, l.DepartureAirport.ID),
					To:           fmt.Sprintf("%s (%s)", l.ArrivalAirport.Name, l.ArrivalAirport.ID),
					Departs:      l.DepartureAirport.Time,
					Arrives:      l.ArrivalAirport.Time,
				}
			}),
			Duration:     FormatDuration(totalMinutes(r)),
			Layovers:     FormatLayovers(len(r.Layovers)),
			Price:        priceCell(r.Price, currency),
			BookingToken: r.BookingToken,
		}
	})
}

// totalMinutes prefers the API total and otherwise sums legs and layovers.
func totalMinutes(r flights.Record) int {
	if r.TotalDuration > 0 {
		return r.TotalDuration
	}
	sum := lo.SumBy(r.Flights, func(l flights.Leg) int { return l.Duration })
	return sum + lo.SumBy(r.Layovers, func(l flights.Layover) int { return l.Duration })
}

// FormatDuration renders minutes as "9h 40m".
func FormatDuration(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

func FormatLayovers(n int) string {
	switch {
	case n <= 0:
		return ""
	case n == 1:
		return "1 layover"
	default:
		return fmt.Sprintf("%d layovers", n)
	}
}

// priceCell leaves the cell blank when the price was missing or unreadable.
func priceCell(amount int, currency string) string {
	if amount <= 0 {
		return ""
	}
	return FormatPrice(amount, currency)
}

// FormatPrice tags the amount with the currency symbol, or the code when no symbol is known.
func FormatPrice(amount int, currency string) string {
	if sym, ok := currencySymbols[currency]; ok {
		return fmt.Sprintf("%s%d", sym, amount)
	}
	if currency == "" {
		return fmt.Sprintf("$%d", amount)
	}
	return fmt.Sprintf("%d %s", amount, currency)
}

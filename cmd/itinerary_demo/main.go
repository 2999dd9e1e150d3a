package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"wayfarer/internal/ai"
	"wayfarer/internal/config"
	"wayfarer/internal/flights"
	"wayfarer/internal/flighttable"
	"wayfarer/internal/itinerary"
	"wayfarer/internal/logging"
	"wayfarer/internal/secrets"
)

func main() {
	var (
		source      = flag.String("from", "Delhi", "origin city or airport code")
		destination = flag.String("to", "Hanoi", "destination city or airport code")
		start       = flag.String("start", time.Now().AddDate(0, 1, 0).Format(itinerary.DateLayout), "start date (YYYY-MM-DD)")
		days        = flag.Int("days", 5, "trip length in days")
		budget      = flag.String("budget", "1500 USD", "budget")
		travelers   = flag.String("travelers", "2", "number of travelers")
		interests   = flag.String("interests", "street food, history", "interests")
		withFlights = flag.Bool("flights", false, "include flight options (needs SERPAPI_API_KEY)")
		question    = flag.String("ask", "", "optional follow-up question")
	)
	flag.Parse()
	logging.Init("warn")

	startDate, err := time.Parse(itinerary.DateLayout, *start)
	if err != nil {
		logrus.Fatalf("invalid -start: %v", err)
	}

	// Credentials come from GEMINI_API_KEY / SERPAPI_API_KEY in the environment.
	store := secrets.NewEnvStore(nil)
	svc := itinerary.NewService(
		store,
		ai.NewGeminiGenerator(os.Getenv("WAYFARER_GEMINI_MODEL")),
		flights.NewClient("", "USD", 5, nil),
		config.FlightPolicyBestEffort,
	)

	ctx := context.Background()
	result, err := svc.Generate(ctx, itinerary.TripRequest{
		Source:         *source,
		Destination:    *destination,
		StartDate:      startDate,
		EndDate:        startDate.AddDate(0, 0, *days),
		Budget:         *budget,
		Travelers:      *travelers,
		Interests:      *interests,
		IncludeFlights: *withFlights,
	})
	if err != nil {
		fmt.Println(itinerary.Notice(err))
		logrus.Fatal(err)
	}
	fmt.Println(result.Text)

	table := flighttable.Extract(result.Text)
	fmt.Printf("\n-- flight table: %s --\n", table.Status)
	for _, row := range flighttable.Rows(table.Records, "USD") {
		fmt.Printf("%-20s %-10s %-12s %s\n", row.Airline, row.Duration, row.Layovers, row.Price)
		for _, leg := range row.Legs {
			fmt.Printf("    %s  %s %s -> %s %s\n", leg.FlightNumber, leg.From, leg.Departs, leg.To, leg.Arrives)
		}
	}

	if *question != "" {
		answer, err := svc.FollowUp(ctx, result.Text, nil, *question)
		if err != nil {
			logrus.Fatal(itinerary.Notice(err))
		}
		fmt.Printf("\nUser: %s\nAssistant: %s\n", *question, answer)
	}
}

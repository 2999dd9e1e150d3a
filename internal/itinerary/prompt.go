package itinerary

import (
	"fmt"
	"strings"

	"wayfarer/internal/flighttable"
	"wayfarer/internal/flights"
)

// Turn is one answered exchange replayed into a follow-up prompt.
type Turn struct {
	Question string
	Answer   string
}

var planInstructions = []string{
	"Accommodation suggestions within budget",
	"Daily activities and sightseeing recommendations based on interests",
	"Local food and restaurant recommendations",
	"Estimated costs for major expenses",
	"Travel tips and cultural considerations",
}

// BuildPrompt renders the itinerary prompt. The flight block is emitted only
// when records is non-empty.
func BuildPrompt(req TripRequest, records []flights.Record) string {
	var b strings.Builder

	b.WriteString("Act as a travel planning expert and create a detailed travel itinerary based on the following information:\n\n")
	fmt.Fprintf(&b, "Source: %s\n", flighttable.Neutralize(req.Source))
	fmt.Fprintf(&b, "Destination: %s\n", flighttable.Neutralize(req.Destination))
	fmt.Fprintf(&b, "Dates: %s to %s\n", req.StartDate.Format(DateLayout), req.EndDate.Format(DateLayout))
	fmt.Fprintf(&b, "Budget: %s\n", flighttable.Neutralize(req.Budget))
	fmt.Fprintf(&b, "Number of Travelers: %s\n", flighttable.Neutralize(req.Travelers))
	fmt.Fprintf(&b, "Interests: %s\n\n", flighttable.Neutralize(req.Interests))

	transport := "Transportation recommendations"
	if len(records) > 0 {
		b.WriteString(flighttable.Embed(records))
		b.WriteString("\n\n")
		transport += " with specific flight options"
	}

	b.WriteString("Please provide a comprehensive travel plan including:\n")
	fmt.Fprintf(&b, "1. %s\n", transport)
	for i, line := range planInstructions {
		fmt.Fprintf(&b, "%d. %s\n", i+2, line)
	}
	b.WriteString("\nPlease format the response in markdown, using headings, bullet lists and emphasis to keep it clear and organized.")

	return b.String()
}

// BuildFollowUpPrompt embeds the itinerary verbatim as previous context and asks
// the new question. history is empty unless a bounded window is configured.
func BuildFollowUpPrompt(initialContext string, history []Turn, question string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Previous context: %s\n\n", initialContext)
	if len(history) > 0 {
		b.WriteString("Earlier questions and answers:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "User: %s\nAssistant: %s\n", t.Question, t.Answer)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "User question: %s\n\n", flighttable.Neutralize(question))
	b.WriteString("Please provide a helpful response based on the previous context. If the question is not related to the previous context, provide general travel advice.")

	return b.String()
}

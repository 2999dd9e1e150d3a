// README: Embeds flight records into prompt text and recovers them from generated text.
package flighttable

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"wayfarer/internal/flights"
)

// Marker pair delimiting the embedded JSON block.
const (
	Marker         = "Available Flight Information:"
	ContinueMarker = "Please"
)

var embedPattern = regexp.MustCompile(`(?s)` + regexp.QuoteMeta(Marker) + `\s*(\{.*?\})\s*` + ContinueMarker)

// markerLike matches the marker regardless of case and spacing.
var markerLike = regexp.MustCompile(`(?i)available\s+flight\s+information\s*:`)

// Neutralize rewrites anything that reads as the marker so free text placed in a
// prompt can never open a flight block.
func Neutralize(text string) string {
	return markerLike.ReplaceAllString(text, "available flight information -")
}

type envelope struct {
	Flights []flights.Record `json:"flights"`
}

type rawEnvelope struct {
	Flights []json.RawMessage `json:"flights"`
}

var errNoLegs = errors.New("record has no legs")

func legError(i int, msg string) error {
	return fmt.Errorf("leg %d: %s", i, msg)
}

// Embed renders the marker line followed by the records as a JSON object.
// The caller appends the continuation text that starts with ContinueMarker.
func Embed(records []flights.Record) string {
	data, err := json.MarshalIndent(envelope{Flights: records}, "", "  ")
	if err != nil {
		// Record holds only strings and ints.
		panic(fmt.Sprintf("flighttable: marshal records: %v", err))
	}
	return Marker + "\n" + string(data)
}

type Status int

const (
	StatusAbsent Status = iota
	StatusFound
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusFound:
		return "found"
	case StatusMalformed:
		return "malformed"
	default:
		return "absent"
	}
}

// Result is the outcome of Extract. Records is non-empty only for StatusFound.
type Result struct {
	Status  Status
	Records []flights.Record
	// Skipped counts entries dropped because they had no usable legs.
	Skipped int
	// DroppedFields counts unreadable fields cleared inside kept records.
	DroppedFields int
	// Reason describes why the block was malformed.
	Reason string
}

func (r Result) OK() bool { return r.Status == StatusFound }

// Extract scans text for the shortest JSON object between the marker pair and
// decodes it record by record. It never fails: a missing block yields
// StatusAbsent, an unusable one StatusMalformed.
func Extract(text string) Result {
	m := embedPattern.FindStringSubmatch(text)
	if m == nil {
		return Result{Status: StatusAbsent}
	}

	var raw rawEnvelope
	if err := json.Unmarshal([]byte(m[1]), &raw); err != nil {
		return Result{Status: StatusMalformed, Reason: err.Error()}
	}

	res := Result{Status: StatusFound}
	for _, item := range raw.Flights {
		rec, dropped, err := decodeRecord(item)
		if err != nil {
			res.Skipped++
			continue
		}
		res.DroppedFields += dropped
		res.Records = append(res.Records, rec)
	}
	if len(res.Records) == 0 {
		return Result{Status: StatusMalformed, Skipped: res.Skipped, Reason: "no conforming flight records"}
	}
	return res
}

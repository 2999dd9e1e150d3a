// README: Itinerary generation: credential lookup, optional flight lookup, prompt, one model call.
package itinerary

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"

	"wayfarer/internal/ai"
	"wayfarer/internal/config"
	"wayfarer/internal/flights"
	"wayfarer/internal/logging"
	"wayfarer/internal/secrets"
)

// Service orchestrates a single itinerary generation or follow-up answer.
// It never retries: one failed outbound call fails the operation.
type Service struct {
	secrets   secrets.Store
	generator ai.TextGenerator
	flights   flights.Searcher
	policy    config.FlightPolicy
}

func NewService(store secrets.Store, generator ai.TextGenerator, searcher flights.Searcher, policy config.FlightPolicy) *Service {
	if policy == "" {
		policy = config.FlightPolicyRequired
	}
	return &Service{
		secrets:   store,
		generator: generator,
		flights:   searcher,
		policy:    policy,
	}
}

// Generate produces the itinerary markdown for req.
func (s *Service) Generate(ctx context.Context, req TripRequest) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	logger := logging.FromContext(ctx).WithFields(logrus.Fields{
		"destination":     req.Destination,
		"include_flights": req.IncludeFlights,
	})

	apiKey, err := s.credential(ctx, secrets.GeminiAPIKey)
	if err != nil {
		logger.WithError(err).Warn("generation credential unavailable")
		return Result{}, err
	}

	var records []flights.Record
	if req.IncludeFlights {
		records, err = s.lookupFlights(ctx, req)
		if err != nil {
			if s.policy == config.FlightPolicyRequired {
				logger.WithError(err).Warn("flight lookup failed, aborting")
				return Result{}, err
			}
			logger.WithError(err).Warn("flight lookup failed, planning without flights")
			records = nil
		}
		logger = logger.WithField("flight_options", len(records))
	}

	text, err := s.generator.Generate(ctx, apiKey, BuildPrompt(req, records))
	if err != nil {
		classified := classifyGeneration(err)
		logger.WithError(classified).Error("itinerary generation failed")
		return Result{}, classified
	}

	logger.Info("itinerary generated")
	return Result{Text: text}, nil
}

// FollowUp answers one chat question against the itinerary text.
func (s *Service) FollowUp(ctx context.Context, initialContext string, history []Turn, question string) (string, error) {
	apiKey, err := s.credential(ctx, secrets.GeminiAPIKey)
	if err != nil {
		return "", err
	}
	answer, err := s.generator.Generate(ctx, apiKey, BuildFollowUpPrompt(initialContext, history, question))
	if err != nil {
		return "", classifyGeneration(err)
	}
	return answer, nil
}

func (s *Service) lookupFlights(ctx context.Context, req TripRequest) ([]flights.Record, error) {
	apiKey, err := s.credential(ctx, secrets.FlightAPIKey)
	if err != nil {
		return nil, err
	}
	records, err := s.flights.Search(ctx, apiKey, flights.Query{
		Origin:      req.Source,
		Destination: req.Destination,
		Date:        req.StartDate,
	})
	if err != nil {
		return nil, &Error{Kind: ErrTransportFailure, Err: err}
	}
	return records, nil
}

func (s *Service) credential(ctx context.Context, name string) (string, error) {
	v, err := s.secrets.Lookup(ctx, name)
	if err == nil {
		return v, nil
	}
	reason := ReasonStoreUnavailable
	if errors.Is(err, secrets.ErrNotConfigured) {
		reason = ReasonNotConfigured
	}
	return "", &Error{Kind: ErrCredentialMissing, Credential: name, Reason: reason, Err: err}
}

func classifyGeneration(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, ai.ErrInvalidAPIKey):
		return &Error{Kind: ErrInvalidCredential, Credential: secrets.GeminiAPIKey, Err: err}
	case errors.As(err, &netErr), errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled),
		isUnreachable(err):
		return &Error{Kind: ErrTransportFailure, Err: err}
	default:
		return &Error{Kind: ErrGenerationFailed, Err: err}
	}
}

// isUnreachable reports API errors that mean the service was not reached or
// did not answer in time, as opposed to a request it refused.
func isUnreachable(err error) bool {
	var apiErr *apierror.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.GRPCStatus().Code() {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	}
	switch apiErr.HTTPCode() {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

package itinerary

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidRequest    = errors.New("invalid trip request")
	ErrCredentialMissing = errors.New("credential missing")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrTransportFailure  = errors.New("transport failure")
	ErrGenerationFailed  = errors.New("generation failed")
)

// CredentialReason separates an absent credential from an unreachable store.
type CredentialReason string

const (
	ReasonNotConfigured    CredentialReason = "not_configured"
	ReasonStoreUnavailable CredentialReason = "store_unavailable"
)

// Error is a classified failure of an itinerary or follow-up operation.
// errors.Is matches it against its Kind sentinel as well as the cause.
type Error struct {
	Kind error
	// Credential names the secret involved, for ErrCredentialMissing and ErrInvalidCredential.
	Credential string
	Reason     CredentialReason
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Credential != "" && e.Reason != "":
		return fmt.Sprintf("%v: %s (%s): %v", e.Kind, e.Credential, e.Reason, e.Err)
	case e.Credential != "":
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Credential, e.Err)
	default:
		return fmt.Sprintf("%v: %v", e.Kind, e.Err)
	}
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

// Notice is the short user-facing message for a failed operation.
func Notice(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		if errors.Is(err, ErrInvalidRequest) {
			return err.Error()
		}
		return "Failed to generate travel plan. Please try again."
	}
	switch e.Kind {
	case ErrCredentialMissing:
		if e.Reason == ReasonStoreUnavailable {
			return "Could not reach the credential store. Please try again."
		}
		return fmt.Sprintf("%s is not configured. Add it to the secret store and retry.", e.Credential)
	case ErrInvalidCredential:
		return fmt.Sprintf("API key not valid: the configured %s was rejected.", e.Credential)
	case ErrTransportFailure:
		return "Could not reach an upstream service. Please try again."
	default:
		return "Failed to generate travel plan. Please try again."
	}
}

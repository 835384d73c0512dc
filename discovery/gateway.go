package discovery

import (
	"context"
	"errors"
	"fmt"

	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

// Gateway runs one catalog search. Implementations return *GatewayError
// for failures so the kind survives to the snapshot.
type Gateway interface {
	Search(ctx context.Context, req models.SearchRequest) (models.ResultPage, error)
}

// GatewayFunc adapts a plain function to Gateway.
type GatewayFunc func(ctx context.Context, req models.SearchRequest) (models.ResultPage, error)

func (f GatewayFunc) Search(ctx context.Context, req models.SearchRequest) (models.ResultPage, error) {
	return f(ctx, req)
}

// ErrorKind classifies a failed search.
type ErrorKind string

const (
	KindNetwork        ErrorKind = "network_error"
	KindInvalidRequest ErrorKind = "invalid_request"
	KindServer         ErrorKind = "server_error"
)

// GatewayError is a failed catalog search.
type GatewayError struct {
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *GatewayError) Error() string {
	switch {
	case e.Err != nil && e.Status != 0:
		return fmt.Sprintf("%s (status %d): %v", e.Kind, e.Status, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Status != 0:
		return fmt.Sprintf("%s (status %d)", e.Kind, e.Status)
	default:
		return string(e.Kind)
	}
}

func (e *GatewayError) Unwrap() error { return e.Err }

func NetworkError(err error) *GatewayError {
	return &GatewayError{Kind: KindNetwork, Err: err}
}

func InvalidRequestError(status int, err error) *GatewayError {
	return &GatewayError{Kind: KindInvalidRequest, Status: status, Err: err}
}

func ServerError(status int, err error) *GatewayError {
	return &GatewayError{Kind: KindServer, Status: status, Err: err}
}

// KindOf reports the kind of err. Errors that are not a *GatewayError are
// treated as network failures, and so are context cancellations and
// deadlines.
func KindOf(err error) ErrorKind {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Kind
	}
	return KindNetwork
}

func IsNetwork(err error) bool { return err != nil && KindOf(err) == KindNetwork }
func IsInvalidRequest(err error) bool { return err != nil && KindOf(err) == KindInvalidRequest }
func IsServer(err error) bool { return err != nil && KindOf(err) == KindServer }

// UserMessage is the shopper-facing text for a failure kind.
func UserMessage(kind ErrorKind) string {
	switch kind {
	case KindServer:
		return "Something went wrong on our side, try again"
	case KindInvalidRequest:
		return "Some filters could not be applied"
	default:
		return "Check your connection and try again"
	}
}

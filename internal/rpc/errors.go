package rpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ppiankov/tariffwatch/internal/model"
)

// Code maps a service error to a gRPC status code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, model.ErrInvalidInput):
		return codes.InvalidArgument
	case errors.Is(err, model.ErrNotFound):
		return codes.NotFound
	case errors.Is(err, model.ErrConflict):
		return codes.FailedPrecondition
	case errors.Is(err, model.ErrRateLimited):
		return codes.ResourceExhausted
	case errors.Is(err, context.Canceled):
		return codes.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return codes.DeadlineExceeded
	default:
		if s, ok := status.FromError(err); ok {
			return s.Code()
		}
		return codes.Internal
	}
}

// ToStatus converts a service error into a gRPC status error.
// Storage failures are reported without internal detail.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	code := Code(err)
	msg := err.Error()
	if code == codes.Internal {
		msg = "internal error"
	}
	return status.Error(code, msg)
}

// FromStatus converts a gRPC status error back into the model taxonomy so
// callers can use errors.Is regardless of transport.
func FromStatus(err error) error {
	if err == nil {
		return nil
	}
	s, ok := status.FromError(err)
	if !ok {
		return err
	}

	var sentinel error
	switch s.Code() {
	case codes.InvalidArgument:
		sentinel = model.ErrInvalidInput
	case codes.NotFound:
		sentinel = model.ErrNotFound
	case codes.FailedPrecondition:
		sentinel = model.ErrConflict
	case codes.ResourceExhausted:
		sentinel = model.ErrRateLimited
	case codes.Internal:
		sentinel = model.ErrStorage
	default:
		return err
	}
	return fmt.Errorf("%w: %s", sentinel, s.Message())
}

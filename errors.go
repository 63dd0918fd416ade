// Package angzarr provides a client library and component runtime for
// talking to an event-sourced Gateway over gRPC.
package angzarr

import (
	"errors"
	"fmt"

	pb "github.com/eventframe/angzarr/pb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ClientError represents errors from client and component operations.
type ClientError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

// ErrorKind categorizes errors across both the client surface (transport,
// connection, argument validation) and the component surface (unknown
// command/event types, optimistic-sequence conflicts). CommandRejectedError
// in handler.go covers business-rule rejections specifically, since that is
// the one kind a handler author raises directly rather than the framework
// detecting it.
type ErrorKind int

const (
	// ErrConnection indicates a connection failure.
	ErrConnection ErrorKind = iota
	// ErrTransport indicates a transport-level error.
	ErrTransport
	// ErrGRPC indicates a gRPC error from the server.
	ErrGRPC
	// ErrInvalidArgument indicates an invalid argument from the caller.
	ErrInvalidArgument
	// ErrInvalidTimestamp indicates a timestamp parsing failure.
	ErrInvalidTimestamp
	// ErrUnknownType indicates no registered handler's suffix matched a
	// command or event's type_url.
	ErrUnknownType
	// ErrSequenceConflict indicates an optimistic-concurrency mismatch
	// between a command's expected sequence and the aggregate's actual
	// next sequence.
	ErrSequenceConflict
	// ErrInternal indicates a framework-side failure not attributable to
	// the caller (marshal failure, nil dependency, etc).
	ErrInternal
)

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Code returns the gRPC status code this error maps to, per spec.md §6's
// status-code table.
func (e *ClientError) Code() codes.Code {
	switch e.Kind {
	case ErrGRPC:
		if e.Cause != nil {
			if s, ok := status.FromError(e.Cause); ok {
				return s.Code()
			}
		}
		return codes.Unknown
	case ErrInvalidArgument, ErrInvalidTimestamp, ErrUnknownType:
		return codes.InvalidArgument
	case ErrSequenceConflict:
		return codes.Aborted
	case ErrConnection, ErrTransport:
		return codes.Unavailable
	case ErrInternal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// Status returns the gRPC Status for this error.
func (e *ClientError) Status() *status.Status {
	if e.Kind == ErrGRPC && e.Cause != nil {
		s, _ := status.FromError(e.Cause)
		return s
	}
	return status.New(e.Code(), e.Message)
}

// IsNotFound returns true if this is a "not found" error.
func (e *ClientError) IsNotFound() bool {
	return e.Code() == codes.NotFound
}

// IsPreconditionFailed returns true if this is a "precondition failed" error.
func (e *ClientError) IsPreconditionFailed() bool {
	return e.Code() == codes.FailedPrecondition
}

// IsInvalidArgument returns true if this is an "invalid argument" error.
func (e *ClientError) IsInvalidArgument() bool {
	return e.Kind == ErrInvalidArgument || e.Code() == codes.InvalidArgument
}

// IsSequenceConflict returns true if this is an optimistic-concurrency
// conflict.
func (e *ClientError) IsSequenceConflict() bool {
	return e.Kind == ErrSequenceConflict
}

// IsUnknownType returns true if no handler suffix matched the type_url.
func (e *ClientError) IsUnknownType() bool {
	return e.Kind == ErrUnknownType
}

// IsConnectionError returns true if this is a connection or transport error.
func (e *ClientError) IsConnectionError() bool {
	return e.Kind == ErrConnection || e.Kind == ErrTransport
}

// Error constructors

// ConnectionError creates a connection error.
func ConnectionError(msg string) *ClientError {
	return &ClientError{Kind: ErrConnection, Message: msg}
}

// TransportError wraps a transport error.
func TransportError(err error) *ClientError {
	return &ClientError{Kind: ErrTransport, Message: "transport error", Cause: err}
}

// GRPCError wraps a gRPC error.
func GRPCError(err error) *ClientError {
	return &ClientError{Kind: ErrGRPC, Message: "grpc error", Cause: err}
}

// InvalidArgumentError creates an invalid argument error.
func InvalidArgumentError(msg string) *ClientError {
	return &ClientError{Kind: ErrInvalidArgument, Message: msg}
}

// InvalidTimestampError creates a timestamp parsing error.
func InvalidTimestampError(msg string) *ClientError {
	return &ClientError{Kind: ErrInvalidTimestamp, Message: msg}
}

// UnknownTypeError reports a type_url with no matching registered suffix.
func UnknownTypeError(typeURL string) *ClientError {
	return &ClientError{Kind: ErrUnknownType, Message: fmt.Sprintf("%s: %s", ErrMsgUnknownCommand, typeURL)}
}

// SequenceConflictError reports an optimistic-concurrency mismatch.
func SequenceConflictError(expected, actual uint64) *ClientError {
	return &ClientError{
		Kind:    ErrSequenceConflict,
		Message: fmt.Sprintf("sequence conflict: command expected %d, aggregate is at %d", expected, actual),
	}
}

// InternalError wraps an unexpected framework-side failure.
func InternalError(err error) *ClientError {
	return &ClientError{Kind: ErrInternal, Message: "internal error", Cause: err}
}

// IsClientError checks if an error is a ClientError.
func IsClientError(err error) bool {
	var clientErr *ClientError
	return errors.As(err, &clientErr)
}

// AsClientError extracts a ClientError from an error chain.
func AsClientError(err error) *ClientError {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr
	}
	return nil
}

// ToErrorDetail renders any error to the client-visible {code, message,
// retryable} shape returned on CommandResponse.Error.
func ToErrorDetail(err error) *pb.ErrorDetail {
	if err == nil {
		return nil
	}
	var rejected CommandRejectedError
	if errors.As(err, &rejected) {
		return &pb.ErrorDetail{Code: codes.FailedPrecondition.String(), Message: rejected.Message}
	}
	if ce := AsClientError(err); ce != nil {
		code := ce.Code()
		return &pb.ErrorDetail{
			Code:      code.String(),
			Message:   ce.Error(),
			Retryable: code == codes.Unavailable || code == codes.Aborted,
		}
	}
	return &pb.ErrorDetail{Code: codes.InvalidArgument.String(), Message: err.Error()}
}

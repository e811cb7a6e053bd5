package gateway

import "fmt"

// The client classifies every failure into exactly one of three types.
// None of them is retried or recovered here; callers keep the latest one
// for display until the next completed operation overwrites it.

// TransportError is a failure before any HTTP status was received: a
// malformed URL, a connection failure, or a cancelled context.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("gateway: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// GatewayError is any non-2xx HTTP response. Message carries the response
// body text when the gateway sent one, else the generic "Bad Request".
// 4xx and 5xx are deliberately not distinguished; display policy belongs
// to the caller.
type GatewayError struct {
	StatusCode int
	Message    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway: status %d: %s", e.StatusCode, e.Message)
}

// DecodeError is a 2xx response whose body did not match the expected
// shape.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("gateway: decode %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

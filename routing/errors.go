package routing

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the routing package. The typed errors below
// match them with errors.Is.
var (
	// ErrMalformedRoute marks a route record that was rejected while building the network.
	ErrMalformedRoute = errors.New("routing: malformed route record")

	// ErrUnknownPort indicates a search endpoint that is not part of the network.
	ErrUnknownPort = errors.New("routing: unknown port")

	// ErrPortNotFound indicates a path port that has no catalog entry.
	ErrPortNotFound = errors.New("routing: port not found in catalog")

	// ErrDuplicatePort indicates two catalog records sharing one ID.
	ErrDuplicatePort = errors.New("routing: duplicate port id")

	// ErrInvalidFuel indicates a fuel capacity that is negative or NaN.
	ErrInvalidFuel = errors.New("routing: fuel capacity must be a non-negative number")
)

// MalformedRouteError describes why a route record was excluded from the network.
type MalformedRouteError struct {
	Index  int // position of the record in the input
	Reason string
}

func (e *MalformedRouteError) Error() string {
	return fmt.Sprintf("routing: route #%d rejected: %s", e.Index, e.Reason)
}

func (e *MalformedRouteError) Is(target error) bool { return target == ErrMalformedRoute }

// UnknownPortError is returned when the start or end port is not in the network.
type UnknownPortError struct {
	PortID int64
	Role   string // "start" or "end"
}

func (e *UnknownPortError) Error() string {
	return fmt.Sprintf("routing: %s port %d not found in network", e.Role, e.PortID)
}

func (e *UnknownPortError) Is(target error) bool { return target == ErrUnknownPort }

// PortNotFoundError is returned when a path references a port missing from the catalog.
type PortNotFoundError struct {
	PortID int64
}

func (e *PortNotFoundError) Error() string {
	return fmt.Sprintf("routing: port %d is on the path but missing from the catalog", e.PortID)
}

func (e *PortNotFoundError) Is(target error) bool { return target == ErrPortNotFound }

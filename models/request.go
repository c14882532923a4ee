package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// RouteRequest is the body of POST /api/route. Fields are json.Number so that
// both 3 and "3" are accepted, and so non-integer ids can be reported clearly.
type RouteRequest struct {
	Start   json.Number `json:"start"`
	End     json.Number `json:"end"`
	MaxFuel json.Number `json:"maxFuel"`
}

// RouteQuery is a validated RouteRequest.
type RouteQuery struct {
	Start   int64
	End     int64
	MaxFuel float64
}

// Validate converts the request into typed values. Ids must be integers and
// maxFuel a finite number greater than zero.
func (r RouteRequest) Validate() (RouteQuery, error) {
	var q RouteQuery
	var err error

	if q.Start, err = parseID("start", r.Start); err != nil {
		return RouteQuery{}, err
	}
	if q.End, err = parseID("end", r.End); err != nil {
		return RouteQuery{}, err
	}

	if r.MaxFuel == "" {
		return RouteQuery{}, errors.New("maxFuel is required")
	}
	q.MaxFuel, err = strconv.ParseFloat(r.MaxFuel.String(), 64)
	if err != nil || math.IsNaN(q.MaxFuel) || math.IsInf(q.MaxFuel, 0) {
		return RouteQuery{}, fmt.Errorf("maxFuel must be a number, got %q", r.MaxFuel)
	}
	if q.MaxFuel <= 0 {
		return RouteQuery{}, fmt.Errorf("maxFuel must be greater than zero, got %g", q.MaxFuel)
	}
	return q, nil
}

func parseID(field string, n json.Number) (int64, error) {
	if n == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	id, err := strconv.ParseInt(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer port id, got %q", field, n)
	}
	return id, nil
}

package utils

import (
	"fmt"
	"strconv"
	"strings"

	"sea-route-server/routing"
)

// ParsePortID parses a port id taken from a path segment or query value.
func ParsePortID(input string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(input), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid port id %q", input)
	}
	return id, nil
}

// ParseCoordinate parses latitude and longitude query values and checks their range.
func ParseCoordinate(lat, lon string) (routing.Coordinate, error) {
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return routing.Coordinate{}, fmt.Errorf("invalid latitude %q", lat)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return routing.Coordinate{}, fmt.Errorf("invalid longitude %q", lon)
	}
	c := routing.Coordinate{Lat: la, Lon: lo}
	if !routing.ValidCoordinate(c) {
		return routing.Coordinate{}, fmt.Errorf("coordinate (%g, %g) out of range", la, lo)
	}
	return c, nil
}

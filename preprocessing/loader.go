package preprocessing

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"sea-route-server/routing"
)

// ErrDataLoad is matched by every *DataLoadError.
var ErrDataLoad = errors.New("preprocessing: reference data could not be loaded")

// DataLoadError reports reference data that is missing or structurally invalid.
type DataLoadError struct {
	Source string // file path or DSN that failed
	Err    error
}

func (e *DataLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *DataLoadError) Unwrap() error { return e.Err }

func (e *DataLoadError) Is(target error) bool { return target == ErrDataLoad }

// Dataset is the raw reference data: the port catalog and the lane records.
type Dataset struct {
	Ports  []routing.Port
	Routes []routing.RouteRecord
}

// Source yields a Dataset. Implementations: FileSource, SnapshotSource, store.DB.
type Source interface {
	LoadDataset(ctx context.Context) (*Dataset, error)
	Describe() string
}

// FileSource reads a GeoJSON port file and a routes JSON file.
type FileSource struct {
	PortsPath  string
	RoutesPath string
}

func (s FileSource) Describe() string {
	return fmt.Sprintf("files(%s, %s)", s.PortsPath, s.RoutesPath)
}

func (s FileSource) LoadDataset(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ports, err := LoadPorts(s.PortsPath)
	if err != nil {
		return nil, err
	}
	routes, err := LoadRoutes(s.RoutesPath)
	if err != nil {
		return nil, err
	}
	return &Dataset{Ports: ports, Routes: routes}, nil
}

// LoadPorts reads a GeoJSON FeatureCollection of Point features whose
// properties carry "id" and "name".
func LoadPorts(path string) ([]routing.Port, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: fmt.Errorf("open ports file: %w", err)}
	}
	ports, err := ParsePorts(data)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	return ports, nil
}

// ParsePorts decodes the GeoJSON port collection.
func ParsePorts(data []byte) ([]routing.Port, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse ports geojson: %w", err)
	}
	if len(fc.Features) == 0 {
		return nil, errors.New("ports geojson has no features")
	}

	ports := make([]routing.Port, 0, len(fc.Features))
	for i, f := range fc.Features {
		id, err := convertID(f.Properties["id"])
		if err != nil {
			return nil, fmt.Errorf("feature %d: id: %w", i, err)
		}
		name, _ := f.Properties["name"].(string)

		pt, ok := f.Geometry.(orb.Point)
		if !ok {
			return nil, fmt.Errorf("feature %d (port %d): geometry must be a Point, got %T", i, id, f.Geometry)
		}

		ports = append(ports, routing.Port{
			ID:       id,
			Name:     name,
			Location: routing.Coordinate{Lat: pt.Lat(), Lon: pt.Lon()},
		})
	}
	return ports, nil
}

type routesFile struct {
	Routes *[]json.RawMessage `json:"routes"`
}

// routeJSON is loosely typed so that one bad record is reported instead of
// failing the whole file.
type routeJSON struct {
	From     interface{}     `json:"from"`
	To       interface{}     `json:"to"`
	Distance interface{}     `json:"distance"`
	Route    json.RawMessage `json:"route"`
}

// waypointJSON accepts the "Longtitude" spelling used by the route data and
// its web client, and falls back to "longitude".
type waypointJSON struct {
	Latitude   *float64 `json:"latitude"`
	Longtitude *float64 `json:"Longtitude"`
	Longitude  *float64 `json:"longitude"`
}

func (w waypointJSON) coordinate() (routing.Coordinate, error) {
	if w.Latitude == nil {
		return routing.Coordinate{}, errors.New("missing latitude")
	}
	c := routing.Coordinate{Lat: *w.Latitude}
	switch {
	case w.Longtitude != nil:
		c.Lon = *w.Longtitude
	case w.Longitude != nil:
		c.Lon = *w.Longitude
	default:
		return routing.Coordinate{}, errors.New("missing longitude")
	}
	return c, nil
}

// LoadRoutes reads {"routes":[{"from","to","distance","route":[...]}]}.
func LoadRoutes(path string) ([]routing.RouteRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: fmt.Errorf("open routes file: %w", err)}
	}
	routes, err := ParseRoutes(data)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	return routes, nil
}

// ParseRoutes decodes route records. Only a file whose top level does not
// parse is an error; a record with missing or unreadable fields is returned
// as-is or with Invalid set, and routing.BuildNetwork rejects it.
func ParseRoutes(data []byte) ([]routing.RouteRecord, error) {
	var rf routesFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse routes json: %w", err)
	}
	if rf.Routes == nil {
		return nil, errors.New(`routes json has no "routes" array`)
	}

	records := make([]routing.RouteRecord, 0, len(*rf.Routes))
	for _, raw := range *rf.Routes {
		records = append(records, decodeRoute(raw))
	}
	return records, nil
}

func decodeRoute(raw json.RawMessage) routing.RouteRecord {
	rec := routing.RouteRecord{Waypoints: []routing.Coordinate{}}

	var r routeJSON
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&r); err != nil {
		rec.Invalid = fmt.Sprintf("record is not an object: %v", err)
		return rec
	}

	var err error
	if rec.From, err = optionalID(r.From); err != nil {
		rec.Invalid = "from: " + err.Error()
		return rec
	}
	if rec.To, err = optionalID(r.To); err != nil {
		rec.Invalid = "to: " + err.Error()
		return rec
	}
	if rec.Distance, err = optionalNumber(r.Distance); err != nil {
		rec.Invalid = "distance: " + err.Error()
		return rec
	}

	if len(r.Route) == 0 || string(r.Route) == "null" {
		return rec
	}
	var wps []waypointJSON
	if err := json.Unmarshal(r.Route, &wps); err != nil {
		rec.Invalid = fmt.Sprintf("route: %v", err)
		return rec
	}
	for i, wp := range wps {
		c, err := wp.coordinate()
		if err != nil {
			rec.Invalid = fmt.Sprintf("route: waypoint %d: %v", i, err)
			return rec
		}
		rec.Waypoints = append(rec.Waypoints, c)
	}
	return rec
}

func optionalID(v interface{}) (*int64, error) {
	if v == nil {
		return nil, nil
	}
	id, err := convertID(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalNumber(v interface{}) (*float64, error) {
	switch n := v.(type) {
	case nil:
		return nil, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %s", n)
		}
		return &f, nil
	default:
		return nil, fmt.Errorf("must be a number, got %T", v)
	}
}

func convertID(id interface{}) (int64, error) {
	switch v := id.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("non-integer id %v", v)
		}
		return int64(v), nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case json.Number:
		return v.Int64()
	case nil:
		return 0, errors.New("missing")
	default:
		return 0, fmt.Errorf("unsupported ID type: %T", id)
	}
}

package preprocessing

import (
	"context"
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"sea-route-server/routing"
)

const snapshotVersion = 1

// gob drops zero values behind pointers, so presence is carried explicitly.
type snapshotRoute struct {
	From, To    int64
	Distance    float64
	HasFrom     bool
	HasTo       bool
	HasDistance bool
	Waypoints   []routing.Coordinate
	Invalid     string
}

type snapshotFile struct {
	Version     int
	GeneratedAt time.Time
	Ports       []routing.Port
	Routes      []snapshotRoute
}

// WriteSnapshot gob-encodes ds to path, creating parent directories.
func WriteSnapshot(path string, ds *Dataset) error {
	snap := snapshotFile{
		Version:     snapshotVersion,
		GeneratedAt: time.Now().UTC(),
		Ports:       ds.Ports,
		Routes:      make([]snapshotRoute, 0, len(ds.Routes)),
	}
	for _, r := range ds.Routes {
		sr := snapshotRoute{Waypoints: r.Waypoints, Invalid: r.Invalid}
		if r.From != nil {
			sr.From, sr.HasFrom = *r.From, true
		}
		if r.To != nil {
			sr.To, sr.HasTo = *r.To, true
		}
		if r.Distance != nil {
			sr.Distance, sr.HasDistance = *r.Distance, true
		}
		snap.Routes = append(snap.Routes, sr)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory for %s: %w", path, err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create GOB file %s: %w", path, err)
	}
	defer f.Close()

	if err := gob.NewEncoder(f).Encode(&snap); err != nil {
		return fmt.Errorf("failed to encode GOB to %s: %w", path, err)
	}
	return f.Close()
}

// ReadSnapshot decodes a snapshot written by WriteSnapshot.
func ReadSnapshot(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DataLoadError{Source: path, Err: err}
	}
	defer f.Close()

	var snap snapshotFile
	if err := gob.NewDecoder(f).Decode(&snap); err != nil {
		return nil, &DataLoadError{Source: path, Err: fmt.Errorf("decode snapshot: %w", err)}
	}
	if snap.Version != snapshotVersion {
		return nil, &DataLoadError{Source: path, Err: fmt.Errorf("unsupported snapshot version %d", snap.Version)}
	}

	ds := &Dataset{
		Ports:  snap.Ports,
		Routes: make([]routing.RouteRecord, 0, len(snap.Routes)),
	}
	for _, sr := range snap.Routes {
		rec := routing.RouteRecord{Waypoints: sr.Waypoints, Invalid: sr.Invalid}
		if sr.HasFrom {
			from := sr.From
			rec.From = &from
		}
		if sr.HasTo {
			to := sr.To
			rec.To = &to
		}
		if sr.HasDistance {
			dist := sr.Distance
			rec.Distance = &dist
		}
		ds.Routes = append(ds.Routes, rec)
	}
	return ds, nil
}

// SnapshotSource loads a Dataset from a gob snapshot.
type SnapshotSource struct {
	Path string
}

func (s SnapshotSource) Describe() string { return fmt.Sprintf("snapshot(%s)", s.Path) }

func (s SnapshotSource) LoadDataset(ctx context.Context) (*Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ReadSnapshot(s.Path)
}

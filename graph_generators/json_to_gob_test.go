package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sea-route-server/config"
	"sea-route-server/preprocessing"
)

func TestDefaultOutputPathMatchesServerConfig(t *testing.T) {
	out := defaultOutputPath(filepath.Join("data", "major_routes.json"))

	cfg := config.Default()
	assert.Equal(t, cfg.SnapshotPath(), out)
}

func TestConvertJSONToGOB(t *testing.T) {
	dir := t.TempDir()
	ports := filepath.Join(dir, "ports.geojson")
	routes := filepath.Join(dir, "routes.json")
	require.NoError(t, os.WriteFile(ports, []byte(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{"id":1,"name":"Singapore"},"geometry":{"type":"Point","coordinates":[103.84,1.26]}},
		{"type":"Feature","properties":{"id":2,"name":"Colombo"},"geometry":{"type":"Point","coordinates":[79.84,6.95]}}]}`), 0o644))
	require.NoError(t, os.WriteFile(routes, []byte(`{"routes":[
		{"from":1,"to":2,"distance":5,"route":[{"latitude":3,"Longtitude":95}]},
		{"from":2,"to":3,"distance":"far"}]}`), 0o644))

	out := defaultOutputPath(routes)
	require.NoError(t, convertJSONToGOB(ports, routes, out))

	ds, err := preprocessing.ReadSnapshot(out)
	require.NoError(t, err)
	assert.Len(t, ds.Ports, 2)
	require.Len(t, ds.Routes, 2)
	assert.NotEmpty(t, ds.Routes[1].Invalid)
}

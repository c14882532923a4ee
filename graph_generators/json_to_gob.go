package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"sea-route-server/preprocessing"
	"sea-route-server/routing"
)

// convertJSONToGOB loads the port and route files, checks that they build a
// network, and writes them as a gob snapshot.
func convertJSONToGOB(portsPath, routesPath, outputPath string) error {
	src := preprocessing.FileSource{PortsPath: portsPath, RoutesPath: routesPath}
	fmt.Printf("Reading %s...\n", src.Describe())

	ds, err := src.LoadDataset(context.Background())
	if err != nil {
		return err
	}

	if _, err := routing.NewCatalog(ds.Ports); err != nil {
		return fmt.Errorf("invalid port catalog: %w", err)
	}
	network, skipped := routing.BuildNetwork(ds.Routes)
	for _, e := range skipped {
		fmt.Printf("Warning: %v\n", e)
	}
	if network.PortCount() == 0 {
		return fmt.Errorf("no valid route records in %s", routesPath)
	}

	if err := preprocessing.WriteSnapshot(outputPath, ds); err != nil {
		return err
	}

	fmt.Printf("Successfully converted to %s\n", outputPath)
	fmt.Printf("Ports: %d, Routes: %d (skipped %d), Segments: %d\n",
		len(ds.Ports), len(ds.Routes), len(skipped), network.SegmentCount())
	return nil
}

// defaultSnapshotName matches the server's default SNAPSHOT_FILE.
const defaultSnapshotName = "network.gob"

// defaultOutputPath puts the snapshot next to the routes file, where the
// server looks for it when DATA_DIR is that directory.
func defaultOutputPath(routesPath string) string {
	return filepath.Join(filepath.Dir(routesPath), defaultSnapshotName)
}

func main() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: go run json_to_gob.go <ports_geojson_file> <routes_json_file> [output_gob_file (default: network.gob beside the routes file)]")
		os.Exit(1)
	}

	portsPath := os.Args[1]
	routesPath := os.Args[2]

	outputPath := defaultOutputPath(routesPath)
	if len(os.Args) > 3 {
		outputPath = os.Args[3]
	}

	if err := convertJSONToGOB(portsPath, routesPath, outputPath); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

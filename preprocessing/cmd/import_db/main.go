package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"sea-route-server/preprocessing"
	"sea-route-server/routing"
	"sea-route-server/store"
)

func main() {
	var portsPath, routesPath, dbPath string
	flag.StringVar(&portsPath, "ports", "data/global_ports_locations.geojson", "Path to the ports GeoJSON file")
	flag.StringVar(&routesPath, "routes", "data/major_routes.json", "Path to the routes JSON file")
	flag.StringVar(&dbPath, "db", "searoute.db", "Path to the SQLite database to (re)populate")
	flag.Parse()

	ctx := context.Background()
	src := preprocessing.FileSource{PortsPath: portsPath, RoutesPath: routesPath}

	log.Printf("Loading %s...", src.Describe())
	ds, err := src.LoadDataset(ctx)
	if err != nil {
		log.Fatalf("failed to load reference data: %v", err)
	}
	if _, err := routing.NewCatalog(ds.Ports); err != nil {
		log.Fatalf("invalid port catalog: %v", err)
	}
	_, skipped := routing.BuildNetwork(ds.Routes)
	for _, e := range skipped {
		log.Printf("Warning: %v", e)
	}

	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open database %s: %v", dbPath, err)
	}
	defer db.Close()

	if err := db.ReplaceDataset(ctx, ds); err != nil {
		log.Fatalf("failed to import: %v", err)
	}

	fmt.Printf("Imported into %s\n", dbPath)
	fmt.Printf("Summary: ports=%d routes=%d malformed=%d\n", len(ds.Ports), len(ds.Routes), len(skipped))
}

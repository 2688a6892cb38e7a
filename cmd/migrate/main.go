package main

import (
	"context"
	"log"
	"os"

	"hypoavg/internal/schema"
)

func main() {
	if len(os.Args) < 3 {
		log.Fatal("Usage: migrate <database_url> <schema_dir>")
	}

	databaseURL := os.Args[1]
	schemaDir := os.Args[2]

	log.Printf("Importing evidence schemas from %s", schemaDir)

	ctx := context.Background()
	store, err := schema.OpenPostgresStore(ctx, databaseURL)
	if err != nil {
		log.Fatalf("Failed to open schema database: %v", err)
	}
	defer store.Close()

	imported, err := schema.ImportDir(ctx, store, schemaDir)
	for _, h := range imported {
		log.Printf("Imported schema for %s", h)
	}
	if err != nil {
		log.Fatalf("Migration stopped: %v", err)
	}

	log.Printf("Migration complete: %d schemas imported", len(imported))
}

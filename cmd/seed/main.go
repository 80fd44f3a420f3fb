// Loads an Aloware activity export (CSV or XLSX) into the staging table.
//
// Usage: seed <file>
package main

import (
	"context"
	"database/sql"
	"log"
	"os"

	"go-callsync/internal/config"
	"go-callsync/internal/database"
	"go-callsync/internal/features/staging"

	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: seed <file.csv|file.xlsx>")
	}
	path := os.Args[1]

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.StagingDSN)
	if err != nil {
		log.Fatalf("failed to connect to staging database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("failed to ping staging database: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open %s: %v", path, err)
	}
	defer file.Close()

	repo := staging.NewStagingRepository(&database.StagingDB{DB: db})
	service := staging.NewStagingService(repo)

	summary, err := service.ImportFile(context.Background(), file, path)
	if err != nil {
		log.Fatalf("import failed: %v", err)
	}

	log.Printf("Imported %s: parsed %d rows, inserted %d", summary.FileName, summary.Parsed, summary.Inserted)
}

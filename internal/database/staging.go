package database

import (
	"context"
	"database/sql"
	"log"

	"go-callsync/internal/config"

	_ "github.com/lib/pq"
	"go.uber.org/fx"
)

// StagingDB wraps the Postgres handle holding the imported telephony rows.
type StagingDB struct {
	DB *sql.DB
}

// NewStagingDB opens the staging Postgres connection with lifecycle management
func NewStagingDB(lc fx.Lifecycle, cfg *config.Config) (*StagingDB, error) {
	db, err := sql.Open("postgres", cfg.StagingDSN)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	log.Println("Connected to staging Postgres!")

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			log.Println("Closing staging Postgres connection...")
			return db.Close()
		},
	})

	return &StagingDB{DB: db}, nil
}

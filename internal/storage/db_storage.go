package storage

import (
	"fmt"

	"interview-dashboard/internal/database"
	"interview-dashboard/internal/models"
)

// DBStorage manages the run journal using SQLite
type DBStorage struct {
	DB      *database.DB
	RunRepo *database.RunRepository
}

// NewDBStorage creates a new database storage
func NewDBStorage(dbPath string) (*DBStorage, error) {
	db, err := database.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	return &DBStorage{
		DB:      db,
		RunRepo: database.NewRunRepository(db),
	}, nil
}

// OpenJournal opens the configured journal; an empty path disables it and returns nil
func OpenJournal(cfg models.JournalConfig) (*DBStorage, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	return NewDBStorage(cfg.Path)
}

// Close closes the database connection
func (ds *DBStorage) Close() error {
	if ds == nil {
		return nil
	}
	return ds.DB.Close()
}

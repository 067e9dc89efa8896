package sqlite

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"course-market/internal/repository"
)

// Open opens (or creates) a sqlite database at the given path and ensures directories exist.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	// a single connection serialises writers, which sqlite needs anyway
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	return db, nil
}

// NewStore wires every sqlite repository onto db.
func NewStore(db *sql.DB) *repository.Store {
	return &repository.Store{
		Students:    NewPrincipalRepository(db, studentsTable),
		Instructors: NewPrincipalRepository(db, instructorsTable),
		Categories:  NewCategoryRepository(db),
		Courses:     NewCourseRepository(db),
		Schedules:   NewScheduleRepository(db),
	}
}

package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"interview-dashboard/internal/models"
)

// ErrRunNotFound is returned when no run has the requested id
var ErrRunNotFound = errors.New("run not found")

// RunRepository handles journal rows for pipeline runs
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db.GetConn()}
}

const runColumns = `id, linkedin_url, job_title, candidate_name, experience_count,
	status, method, error, created_at, updated_at`

// Create inserts a new run; zero timestamps are set to now
func (rr *RunRepository) Create(run *models.Run) error {
	now := time.Now().UTC()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	if run.UpdatedAt.IsZero() {
		run.UpdatedAt = run.CreatedAt
	}

	_, err := rr.db.Exec(`
		INSERT INTO runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.LinkedInURL, run.JobTitle, run.CandidateName, run.ExperienceCount,
		string(run.Status), run.Method, run.Error, run.CreatedAt, run.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", run.ID, err)
	}
	return nil
}

// UpdateStatus records a new status with the delivery method and error message
func (rr *RunRepository) UpdateStatus(id string, status models.RunStatus, method, errMsg string) error {
	result, err := rr.db.Exec(`
		UPDATE runs 
		SET status = ?, 
			method = ?, 
			error = ?, 
			updated_at = ? 
		WHERE id = ?
	`, string(status), method, errMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update run %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrRunNotFound
	}
	return nil
}

// Get returns a single run
func (rr *RunRepository) Get(id string) (*models.Run, error) {
	row := rr.db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// List returns the most recent runs, newest first
func (rr *RunRepository) List(limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := rr.db.Query(`
		SELECT `+runColumns+` FROM runs 
		ORDER BY created_at DESC, rowid DESC 
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]models.Run, 0, limit)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}

	return runs, rows.Err()
}

// CountByStatus returns how many runs are in each status
func (rr *RunRepository) CountByStatus() (map[models.RunStatus]int, error) {
	rows, err := rr.db.Query(`SELECT status, COUNT(*) FROM runs GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.RunStatus]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[models.RunStatus(status)] = count
	}

	return counts, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var run models.Run
	var status string

	err := s.Scan(&run.ID, &run.LinkedInURL, &run.JobTitle, &run.CandidateName, &run.ExperienceCount,
		&status, &run.Method, &run.Error, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}

	run.Status = models.RunStatus(status)
	return &run, nil
}

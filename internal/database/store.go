package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicpulse/clinicpulse/internal/logging"
	"github.com/clinicpulse/clinicpulse/internal/models"
)

// ErrNotFound is returned when a lookup by id matches no row.
var ErrNotFound = errors.New("record not found")

const assetColumns = `id, name, type, status, priority, url, metrics, last_updated`

const taskColumns = `id, title, description, type, status, priority, due_date, completed, ai_generated`

type rowScanner interface {
	Scan(dest ...any) error
}

func closeRows(rows *sql.Rows, what string) {
	if err := rows.Close(); err != nil {
		logging.L().Warn("failed to close rows", "query", what, "error", err)
	}
}

// ListAssets returns every digital asset ordered by type then name.
func ListAssets(ctx context.Context) ([]models.Asset, error) {
	rows, err := DB.QueryContext(ctx, `SELECT `+assetColumns+` FROM digital_assets ORDER BY type, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query assets: %w", err)
	}
	defer closeRows(rows, "assets")

	assets := []models.Asset{}
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate assets: %w", err)
	}
	return assets, nil
}

func scanAsset(row rowScanner) (models.Asset, error) {
	var (
		a       models.Asset
		url     sql.NullString
		metrics []byte
	)
	if err := row.Scan(&a.ID, &a.Name, &a.Type, &a.Status, &a.Priority, &url, &metrics, &a.LastUpdated); err != nil {
		return models.Asset{}, fmt.Errorf("failed to scan asset: %w", err)
	}
	a.URL = url.String
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &a.Metrics); err != nil {
			return models.Asset{}, fmt.Errorf("failed to decode metrics for asset %s: %w", a.ID, err)
		}
	}
	return a, nil
}

// ListTasks returns every task, soonest due first, undated tasks last.
func ListTasks(ctx context.Context) ([]models.Task, error) {
	rows, err := DB.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY due_date ASC NULLS LAST, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer closeRows(rows, "tasks")

	tasks := []models.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tasks: %w", err)
	}
	return tasks, nil
}

func scanTask(row rowScanner) (models.Task, error) {
	var (
		t   models.Task
		due sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Type, &t.Status, &t.Priority, &due, &t.Completed, &t.AIGenerated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Task{}, ErrNotFound
		}
		return models.Task{}, fmt.Errorf("failed to scan task: %w", err)
	}
	if due.Valid {
		t.DueDate = due.Time
	}
	return t, nil
}

// CreateTask inserts a task, assigning an id when none is given.
func CreateTask(ctx context.Context, t models.Task) (models.Task, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = "pending"
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}

	var due sql.NullTime
	if !t.DueDate.IsZero() {
		due = sql.NullTime{Time: t.DueDate, Valid: true}
	}

	row := DB.QueryRowContext(ctx, `
		INSERT INTO tasks (id, title, description, type, status, priority, due_date, completed, ai_generated)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+taskColumns,
		t.ID, t.Title, t.Description, t.Type, t.Status, t.Priority, due, t.Completed, t.AIGenerated)

	created, err := scanTask(row)
	if err != nil {
		return models.Task{}, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// CompleteTask marks a task completed and returns the row. changed is false
// when the task was already complete; the row is then left untouched.
func CompleteTask(ctx context.Context, id string) (task models.Task, changed bool, err error) {
	row := DB.QueryRowContext(ctx, `
		UPDATE tasks SET completed = TRUE, status = 'completed'
		WHERE id = $1 AND NOT completed
		RETURNING `+taskColumns, id)
	task, err = scanTask(row)
	if err == nil {
		return task, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.Task{}, false, err
	}

	task, err = GetTask(ctx, id)
	return task, false, err
}

// GetTask returns one task by id.
func GetTask(ctx context.Context, id string) (models.Task, error) {
	row := DB.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	return scanTask(row)
}

// ListCompetitors returns tracked competitors, nearest first.
func ListCompetitors(ctx context.Context) ([]models.Competitor, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT id, name, review_count, average_rating, distance_km, website_url, last_updated
		FROM competitors
		ORDER BY distance_km ASC, name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query competitors: %w", err)
	}
	defer closeRows(rows, "competitors")

	competitors := []models.Competitor{}
	for rows.Next() {
		var (
			c       models.Competitor
			website sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.ReviewCount, &c.AverageRating, &c.DistanceKM, &website, &c.LastUpdated); err != nil {
			return nil, fmt.Errorf("failed to scan competitor: %w", err)
		}
		c.WebsiteURL = website.String
		competitors = append(competitors, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate competitors: %w", err)
	}
	return competitors, nil
}

// RecordKPI appends one sample to the KPI time series.
func RecordKPI(ctx context.Context, p models.KPIPoint) error {
	if p.RecordedAt.IsZero() {
		p.RecordedAt = nowFunc()
	}
	if _, err := DB.ExecContext(ctx,
		`INSERT INTO kpi_timeseries (metric, value, recorded_at) VALUES ($1, $2, $3)`,
		p.Metric, p.Value, p.RecordedAt); err != nil {
		return fmt.Errorf("failed to record kpi %s: %w", p.Metric, err)
	}
	return nil
}

// KPISeries returns the samples of one metric recorded at or after since, oldest first.
func KPISeries(ctx context.Context, metric string, since time.Time) ([]models.KPIPoint, error) {
	rows, err := DB.QueryContext(ctx, `
		SELECT metric, value, recorded_at
		FROM kpi_timeseries
		WHERE metric = $1 AND recorded_at >= $2
		ORDER BY recorded_at ASC
	`, metric, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query kpi series: %w", err)
	}
	defer closeRows(rows, "kpi_timeseries")

	points := []models.KPIPoint{}
	for rows.Next() {
		var p models.KPIPoint
		if err := rows.Scan(&p.Metric, &p.Value, &p.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan kpi point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate kpi series: %w", err)
	}
	return points, nil
}

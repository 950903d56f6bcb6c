package metrics

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"recipe-planner/internal/database"
)

const sqlInsertMetric = `INSERT INTO request_metrics (request_id, method, route, status, latency_ms, timestamp)
	VALUES (?, ?, ?, ?, ?, ?)`

const sqlDailyUsage = `SELECT substr(timestamp, 1, 10) AS day, COUNT(*),
	SUM(CASE WHEN status >= 500 THEN 1 ELSE 0 END), AVG(latency_ms)
	FROM request_metrics WHERE timestamp >= ? GROUP BY day ORDER BY day DESC`

const sqlCleanupMetrics = `DELETE FROM request_metrics WHERE timestamp < ?`

// RequestMetric records one request served by the recipe API.
type RequestMetric struct {
	RequestID string
	Method    string
	Route     string
	Status    int
	LatencyMS int64
	Timestamp time.Time
}

// Store handles persistence of metrics to SQLite.
type Store struct {
	db *sql.DB
}

// NewStore initializes the Store with an existing database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Record saves a metric to the database.
func (s *Store) Record(m RequestMetric) error {
	ts := m.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	_, err := s.db.ExecContext(context.Background(), sqlInsertMetric,
		m.RequestID, m.Method, m.Route, m.Status, m.LatencyMS, ts.UTC().Format(database.TimeLayout))
	if err != nil {
		return fmt.Errorf("failed to record metric: %w", err)
	}
	return nil
}

// DailyUsage represents request totals for a single day.
type DailyUsage struct {
	Date         string
	Requests     int
	ServerErrors int
	AvgLatencyMS float64
}

// GetDailyUsage retrieves usage for the last N days, newest first.
func (s *Store) GetDailyUsage(days int) ([]DailyUsage, error) {
	since := time.Now().UTC().AddDate(0, 0, -days).Format(database.TimeLayout)
	rows, err := s.db.QueryContext(context.Background(), sqlDailyUsage, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily usage: %w", err)
	}
	defer rows.Close()

	var results []DailyUsage
	for rows.Next() {
		var (
			u   DailyUsage
			avg sql.NullFloat64
		)
		if err := rows.Scan(&u.Date, &u.Requests, &u.ServerErrors, &avg); err != nil {
			return nil, fmt.Errorf("failed to scan daily usage: %w", err)
		}
		if avg.Valid {
			u.AvgLatencyMS = avg.Float64
		}
		results = append(results, u)
	}
	return results, rows.Err()
}

// Cleanup removes records older than the specified number of days.
func (s *Store) Cleanup(olderThanDays int) (int64, error) {
	threshold := time.Now().UTC().AddDate(0, 0, -olderThanDays).Format(database.TimeLayout)
	res, err := s.db.ExecContext(context.Background(), sqlCleanupMetrics, threshold)
	if err != nil {
		return 0, fmt.Errorf("failed to clean up metrics: %w", err)
	}
	return res.RowsAffected()
}

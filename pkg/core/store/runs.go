package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"finmodeler/pkg/core/forecast"
	"finmodeler/pkg/core/model"
)

// AnalysisRun is one complete analysis artifact: the historical model plus
// every scenario forecast produced from it.
type AnalysisRun struct {
	ID        string                     `json:"id"`
	Ticker    string                     `json:"ticker"`
	Company   string                     `json:"company"`
	CreatedAt time.Time                  `json:"created_at"`
	Model     *model.LinkedModel         `json:"model"`
	Forecasts []*forecast.ForecastResult `json:"forecasts"`
}

// RunStore persists analysis runs. With a pool it writes to Postgres;
// without one it falls back to JSON files under dir.
type RunStore struct {
	pool    *pgxpool.Pool
	fileDir string
}

// NewRunStore creates a run store. If pool is nil and dir is empty, runs
// are kept under a default local cache directory.
func NewRunStore(pool *pgxpool.Pool, dir string) *RunStore {
	if pool == nil && dir == "" {
		dir = filepath.Join(".cache", "finmodeler", "runs")
	}
	if dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			dir = ""
		}
	}
	return &RunStore{pool: pool, fileDir: dir}
}

// NewRun assembles a run with a fresh identifier.
func NewRun(m *model.LinkedModel, forecasts []*forecast.ForecastResult) *AnalysisRun {
	return &AnalysisRun{
		ID:        uuid.New().String(),
		Ticker:    m.Ticker,
		Company:   m.CompanyName,
		CreatedAt: time.Now().UTC(),
		Model:     m,
		Forecasts: forecasts,
	}
}

// Save persists a run to the database, or to the file fallback when no
// pool is configured.
func (s *RunStore) Save(ctx context.Context, run *AnalysisRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	if s.pool != nil {
		query := `
			INSERT INTO analysis_runs (id, ticker, company, created_at, data)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data
		`
		if _, err := s.pool.Exec(ctx, query, run.ID, run.Ticker, run.Company, run.CreatedAt, data); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		return nil
	}

	if s.fileDir == "" {
		return fmt.Errorf("run store has neither database nor file directory")
	}
	path := filepath.Join(s.fileDir, run.ID+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run file: %w", err)
	}
	return nil
}

// Get retrieves a run by ID.
func (s *RunStore) Get(ctx context.Context, id string) (*AnalysisRun, error) {
	var data []byte

	if s.pool != nil {
		query := `SELECT data FROM analysis_runs WHERE id = $1 LIMIT 1`
		if err := s.pool.QueryRow(ctx, query, id).Scan(&data); err != nil {
			return nil, fmt.Errorf("query run: %w", err)
		}
	} else {
		var err error
		data, err = os.ReadFile(filepath.Join(s.fileDir, id+".json"))
		if err != nil {
			return nil, fmt.Errorf("read run file: %w", err)
		}
	}

	var run AnalysisRun
	if err := json.Unmarshal(data, &run); err != nil {
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &run, nil
}

// ListByTicker returns run IDs for a ticker, newest first. The file
// fallback scans the directory; the database path uses the index.
func (s *RunStore) ListByTicker(ctx context.Context, ticker string) ([]string, error) {
	if s.pool != nil {
		query := `SELECT id FROM analysis_runs WHERE ticker = $1 ORDER BY created_at DESC`
		rows, err := s.pool.Query(ctx, query, ticker)
		if err != nil {
			return nil, fmt.Errorf("query runs: %w", err)
		}
		defer rows.Close()

		var ids []string
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				return nil, fmt.Errorf("scan run id: %w", err)
			}
			ids = append(ids, id)
		}
		return ids, rows.Err()
	}

	entries, err := os.ReadDir(s.fileDir)
	if err != nil {
		return nil, fmt.Errorf("list run files: %w", err)
	}
	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		run, err := s.Get(ctx, entry.Name()[:len(entry.Name())-len(".json")])
		if err != nil || run.Ticker != ticker {
			continue
		}
		ids = append(ids, run.ID)
	}
	return ids, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const cellColumns = `cell_id, name, lat, lon, climate, context, created_at, updated_at`

func (s *PostgresStore) UpsertCell(ctx context.Context, c *CellRecord) error {
	climateJSON, _ := json.Marshal(c.Climate)
	contextJSON, _ := json.Marshal(c.Context)
	if c.Climate == nil {
		climateJSON = nil
	}
	if c.Context == nil {
		contextJSON = nil
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO survey_cells (cell_id, name, lat, lon, climate, context)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (cell_id) DO UPDATE SET
			name = EXCLUDED.name,
			lat = EXCLUDED.lat,
			lon = EXCLUDED.lon,
			climate = COALESCE(EXCLUDED.climate, survey_cells.climate),
			context = COALESCE(EXCLUDED.context, survey_cells.context),
			updated_at = now()
		RETURNING created_at, updated_at`,
		c.ID, c.Name, c.Lat, c.Lon, climateJSON, contextJSON,
	).Scan(&c.CreatedAt, &c.UpdatedAt)
}

func (s *PostgresStore) GetCell(ctx context.Context, id string) (*CellRecord, error) {
	c := &CellRecord{}
	var name sql.NullString
	var climateJSON, contextJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT `+cellColumns+`
		FROM survey_cells WHERE cell_id = $1`, id,
	).Scan(&c.ID, &name, &c.Lat, &c.Lon, &climateJSON, &contextJSON, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if name.Valid {
		c.Name = name.String
	}
	if climateJSON != nil {
		_ = json.Unmarshal(climateJSON, &c.Climate)
	}
	if contextJSON != nil {
		_ = json.Unmarshal(contextJSON, &c.Context)
	}
	return c, nil
}

// ListCells returns cells ordered by id. A limit <= 0 means unbounded: the
// engine fetches the whole population this way, so capping here would
// silently truncate runs.
func (s *PostgresStore) ListCells(ctx context.Context, limit, offset int) ([]*CellRecord, error) {
	query := `SELECT ` + cellColumns + ` FROM survey_cells ORDER BY cell_id`
	args := []interface{}{}
	n := 0
	if limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, limit)
	}
	if offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, offset)
	}
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []*CellRecord
	for rows.Next() {
		c := &CellRecord{}
		var name sql.NullString
		var climateJSON, contextJSON []byte
		if err := rows.Scan(&c.ID, &name, &c.Lat, &c.Lon, &climateJSON, &contextJSON, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if name.Valid {
			c.Name = name.String
		}
		if climateJSON != nil {
			_ = json.Unmarshal(climateJSON, &c.Climate)
		}
		if contextJSON != nil {
			_ = json.Unmarshal(contextJSON, &c.Context)
		}
		cells = append(cells, c)
	}
	return cells, rows.Err()
}

func (s *PostgresStore) CreateHousehold(ctx context.Context, h *HouseholdRecord) error {
	depJSON, _ := json.Marshal(h.Deprivations)
	var enhancedJSON []byte
	if h.Enhanced != nil {
		enhancedJSON, _ = json.Marshal(h.Enhanced)
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO survey_households (household_id, cell_id, size, deprivations, enhanced)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		h.ID, h.CellID, h.Size, depJSON, enhancedJSON,
	).Scan(&h.CreatedAt)
}

func (s *PostgresStore) GetHouseholdsForCell(ctx context.Context, cellID string) ([]*HouseholdRecord, error) {
	return s.ListHouseholds(ctx, HouseholdFilter{CellID: cellID})
}

func (s *PostgresStore) ListHouseholds(ctx context.Context, filter HouseholdFilter) ([]*HouseholdRecord, error) {
	query := `SELECT household_id, cell_id, size, deprivations, enhanced, created_at
		FROM survey_households WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.CellID != "" {
		n++
		query += fmt.Sprintf(" AND cell_id = $%d", n)
		args = append(args, filter.CellID)
	}
	query += " ORDER BY household_id"
	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var households []*HouseholdRecord
	for rows.Next() {
		h := &HouseholdRecord{}
		var depJSON, enhancedJSON []byte
		if err := rows.Scan(&h.ID, &h.CellID, &h.Size, &depJSON, &enhancedJSON, &h.CreatedAt); err != nil {
			return nil, err
		}
		if depJSON != nil {
			_ = json.Unmarshal(depJSON, &h.Deprivations)
		}
		if enhancedJSON != nil {
			_ = json.Unmarshal(enhancedJSON, &h.Enhanced)
		}
		households = append(households, h)
	}
	return households, rows.Err()
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *Run) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO mpi_runs (status, cutoff, enhanced)
		VALUES ($1, $2, $3)
		RETURNING run_id, created_at`,
		run.Status, run.Cutoff, run.Enhanced,
	).Scan(&run.ID, &run.CreatedAt)
}

func (s *PostgresStore) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	r := &Run{}
	var comparisonJSON []byte
	var runError sql.NullString
	err := s.pool.QueryRow(ctx, `
		SELECT run_id, status, cutoff, enhanced, comparison, error,
			num_cells, num_households, created_at, completed_at
		FROM mpi_runs WHERE run_id = $1`, id,
	).Scan(&r.ID, &r.Status, &r.Cutoff, &r.Enhanced, &comparisonJSON, &runError,
		&r.NumCells, &r.NumHouseholds, &r.CreatedAt, &r.CompletedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if runError.Valid {
		r.Error = runError.String
	}
	if comparisonJSON != nil {
		_ = json.Unmarshal(comparisonJSON, &r.Comparison)
	}
	return r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.pool.Query(ctx, `
		SELECT run_id, status, cutoff, enhanced, comparison, error,
			num_cells, num_households, created_at, completed_at
		FROM mpi_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var comparisonJSON []byte
		var runError sql.NullString
		if err := rows.Scan(&r.ID, &r.Status, &r.Cutoff, &r.Enhanced, &comparisonJSON, &runError,
			&r.NumCells, &r.NumHouseholds, &r.CreatedAt, &r.CompletedAt); err != nil {
			return nil, err
		}
		if runError.Valid {
			r.Error = runError.String
		}
		if comparisonJSON != nil {
			_ = json.Unmarshal(comparisonJSON, &r.Comparison)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func (s *PostgresStore) UpdateRun(ctx context.Context, run *Run) error {
	var comparisonJSON []byte
	if run.Comparison != nil {
		comparisonJSON, _ = json.Marshal(run.Comparison)
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE mpi_runs SET
			status = $2, comparison = $3, error = $4,
			num_cells = $5, num_households = $6, completed_at = $7
		WHERE run_id = $1`,
		run.ID, run.Status, comparisonJSON, run.Error,
		run.NumCells, run.NumHouseholds, run.CompletedAt)
	return err
}

func (s *PostgresStore) CreateCellSummary(ctx context.Context, cs *CellSummary) error {
	comparisonJSON, _ := json.Marshal(cs.Comparison)
	return s.pool.QueryRow(ctx, `
		INSERT INTO run_cell_summaries (run_id, cell_id, harshness, urbanization, comparison)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		cs.RunID, cs.CellID, cs.Harshness, cs.Urbanization, comparisonJSON,
	).Scan(&cs.ID, &cs.CreatedAt)
}

func (s *PostgresStore) GetCellSummaries(ctx context.Context, runID uuid.UUID) ([]*CellSummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, run_id, cell_id, harshness, urbanization, comparison, created_at
		FROM run_cell_summaries WHERE run_id = $1 ORDER BY cell_id`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []*CellSummary
	for rows.Next() {
		cs := &CellSummary{}
		var comparisonJSON []byte
		if err := rows.Scan(&cs.ID, &cs.RunID, &cs.CellID, &cs.Harshness, &cs.Urbanization, &comparisonJSON, &cs.CreatedAt); err != nil {
			return nil, err
		}
		if comparisonJSON != nil {
			_ = json.Unmarshal(comparisonJSON, &cs.Comparison)
		}
		summaries = append(summaries, cs)
	}
	return summaries, rows.Err()
}

func (s *PostgresStore) GetStats(ctx context.Context) (*SurveyStats, error) {
	stats := &SurveyStats{}
	err := s.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM survey_cells),
			(SELECT COUNT(*) FROM survey_cells WHERE climate IS NOT NULL),
			(SELECT COUNT(*) FROM survey_households),
			(SELECT COUNT(*) FROM survey_households WHERE enhanced IS NOT NULL),
			(SELECT COUNT(*) FROM mpi_runs WHERE status = 'completed'),
			COALESCE((SELECT num_households FROM mpi_runs WHERE status = 'completed'
				ORDER BY completed_at DESC LIMIT 1), 0)`,
	).Scan(&stats.TotalCells, &stats.CellsWithClimate, &stats.TotalHouseholds,
		&stats.EnhancedHouseholds, &stats.CompletedRuns, &stats.LatestRunHouseholds)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atlasfm/atlas/internal/criteria"
	"github.com/atlasfm/atlas/internal/risk"
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

// --- Factor inputs ---

func (s *PostgresStore) GetFactorInputs(ctx context.Context, assetID uuid.UUID) (*AssetFactorInputs, error) {
	var reliabilityJSON, consequenceJSON []byte
	err := s.pool.QueryRow(ctx, `
		SELECT reliability, consequence
		FROM atlas_factor_inputs WHERE asset_id = $1`, assetID,
	).Scan(&reliabilityJSON, &consequenceJSON)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	in := &AssetFactorInputs{AssetID: assetID}
	if reliabilityJSON != nil {
		if err := json.Unmarshal(reliabilityJSON, &in.Reliability); err != nil {
			return nil, fmt.Errorf("decode reliability inputs for asset %s: %w", assetID, err)
		}
	}
	if consequenceJSON != nil {
		if err := json.Unmarshal(consequenceJSON, &in.Consequence); err != nil {
			return nil, fmt.Errorf("decode consequence inputs for asset %s: %w", assetID, err)
		}
	}
	return in, nil
}

func (s *PostgresStore) UpsertFactorInputs(ctx context.Context, in *AssetFactorInputs) error {
	reliabilityJSON, err := json.Marshal(in.Reliability)
	if err != nil {
		return err
	}
	consequenceJSON, err := json.Marshal(in.Consequence)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO atlas_factor_inputs (asset_id, reliability, consequence, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (asset_id) DO UPDATE SET
			reliability = EXCLUDED.reliability,
			consequence = EXCLUDED.consequence,
			updated_at = now()`,
		in.AssetID, reliabilityJSON, consequenceJSON)
	return err
}

// --- Criteria configuration ---

func (s *PostgresStore) GetCriteriaSet(ctx context.Context) (*criteria.Set, error) {
	set := &criteria.Set{}
	if err := s.pool.QueryRow(ctx,
		`SELECT generation FROM atlas_criteria_generation`,
	).Scan(&set.Generation); err != nil {
		return nil, fmt.Errorf("read criteria generation: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, name, weight, is_active, status, created_at, updated_at
		FROM atlas_criteria
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c criteria.Criterion
		if err := rows.Scan(&c.ID, &c.Name, &c.Weight, &c.IsActive, &c.Status, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		set.Criteria = append(set.Criteria, c)
	}
	return set, rows.Err()
}

// UpdateCriteriaSet writes the staged set inside a transaction guarded by
// the generation counter. A generation mismatch returns ErrStaleGeneration
// with nothing applied.
func (s *PostgresStore) UpdateCriteriaSet(ctx context.Context, set *criteria.Set, expectedGeneration int64) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE atlas_criteria_generation
		SET generation = generation + 1
		WHERE generation = $1`, expectedGeneration)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return criteria.ErrStaleGeneration
	}

	for i := range set.Criteria {
		c := &set.Criteria[i]
		if _, err := tx.Exec(ctx, `
			INSERT INTO atlas_criteria (id, name, weight, is_active, status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (id) DO UPDATE SET
				name = EXCLUDED.name,
				weight = EXCLUDED.weight,
				is_active = EXCLUDED.is_active,
				status = EXCLUDED.status,
				updated_at = now()`,
			c.ID, c.Name, c.Weight, c.IsActive, c.Status); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) AppendAudit(ctx context.Context, entry *criteria.AuditEntry) error {
	oldJSON, err := json.Marshal(entry.OldState)
	if err != nil {
		return err
	}
	newJSON, err := json.Marshal(entry.NewState)
	if err != nil {
		return err
	}
	payloadJSON, err := criteria.MarshalPayload(entry.Payload)
	if err != nil {
		return err
	}

	return s.pool.QueryRow(ctx, `
		INSERT INTO atlas_criteria_audit
			(criterion_id, action, old_state, new_state, actor, reason, impacted_assets, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		entry.CriterionID, entry.Action, oldJSON, newJSON,
		entry.Actor, entry.Reason, entry.ImpactedAssets, payloadJSON,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (s *PostgresStore) ListAudit(ctx context.Context, criterionID uuid.UUID) ([]*criteria.AuditEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, criterion_id, action, old_state, new_state, actor, reason, impacted_assets, payload, created_at
		FROM atlas_criteria_audit
		WHERE criterion_id = $1
		ORDER BY created_at ASC`, criterionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*criteria.AuditEntry
	for rows.Next() {
		e := &criteria.AuditEntry{}
		var oldJSON, newJSON, payloadJSON []byte
		if err := rows.Scan(&e.ID, &e.CriterionID, &e.Action, &oldJSON, &newJSON,
			&e.Actor, &e.Reason, &e.ImpactedAssets, &payloadJSON, &e.CreatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(oldJSON, &e.OldState); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(newJSON, &e.NewState); err != nil {
			return nil, err
		}
		payload, err := criteria.UnmarshalPayload(payloadJSON)
		if err != nil {
			return nil, err
		}
		e.Payload = payload
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// --- Criterion and composite scores ---

func (s *PostgresStore) CountAssetsForCriterion(ctx context.Context, criterionID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT asset_id)
		FROM atlas_criterion_scores WHERE criterion_id = $1`, criterionID,
	).Scan(&n)
	return n, err
}

func (s *PostgresStore) ListAssetsForCriterion(ctx context.Context, criterionID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT asset_id
		FROM atlas_criterion_scores WHERE criterion_id = $1
		ORDER BY asset_id ASC`, criterionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssetIDs(rows)
}

func (s *PostgresStore) DeleteScoresForCriterion(ctx context.Context, criterionID uuid.UUID) (int, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM atlas_criterion_scores WHERE criterion_id = $1`, criterionID)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (s *PostgresStore) UpsertCriterionScore(ctx context.Context, assetID, criterionID uuid.UUID, score float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO atlas_criterion_scores (asset_id, criterion_id, score, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (asset_id, criterion_id) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = now()`,
		assetID, criterionID, score)
	return err
}

func (s *PostgresStore) GetCriterionScores(ctx context.Context, assetID uuid.UUID) (map[uuid.UUID]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT criterion_id, score
		FROM atlas_criterion_scores WHERE asset_id = $1`, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[uuid.UUID]float64)
	for rows.Next() {
		var id uuid.UUID
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, err
		}
		scores[id] = score
	}
	return scores, rows.Err()
}

func (s *PostgresStore) UpsertCompositeScore(ctx context.Context, assetID uuid.UUID, score float64) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO atlas_composite_scores (asset_id, score, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (asset_id) DO UPDATE SET
			score = EXCLUDED.score,
			updated_at = now()`,
		assetID, score)
	return err
}

func (s *PostgresStore) ListCompositeScores(ctx context.Context) (map[uuid.UUID]float64, error) {
	rows, err := s.pool.Query(ctx, `SELECT asset_id, score FROM atlas_composite_scores`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := make(map[uuid.UUID]float64)
	for rows.Next() {
		var id uuid.UUID
		var score float64
		if err := rows.Scan(&id, &score); err != nil {
			return nil, err
		}
		scores[id] = score
	}
	return scores, rows.Err()
}

func (s *PostgresStore) ListScoredAssets(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT asset_id FROM atlas_criterion_scores
		ORDER BY asset_id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAssetIDs(rows)
}

// --- Risk assessments ---

func (s *PostgresStore) CreateAssessment(ctx context.Context, a *risk.Assessment) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO atlas_assessments
			(asset_id, pof, cof, risk_score, risk_level, justification, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		a.AssetID, a.PoF, a.CoF, a.RiskScore, a.Level, a.Justification, a.Status,
	).Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
}

const assessmentColumns = `id, asset_id, pof, cof, risk_score, risk_level, justification, status, created_at, updated_at`

func (s *PostgresStore) GetAssessment(ctx context.Context, id uuid.UUID) (*risk.Assessment, error) {
	a := &risk.Assessment{}
	err := s.pool.QueryRow(ctx, `
		SELECT `+assessmentColumns+`
		FROM atlas_assessments WHERE id = $1`, id,
	).Scan(&a.ID, &a.AssetID, &a.PoF, &a.CoF, &a.RiskScore, &a.Level,
		&a.Justification, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PostgresStore) UpdateAssessmentStatus(ctx context.Context, id uuid.UUID, status risk.AssessmentStatus) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE atlas_assessments SET status = $2, updated_at = now()
		WHERE id = $1`, id, status)
	return err
}

func (s *PostgresStore) ListAssessments(ctx context.Context, filter AssessmentFilter) ([]*risk.Assessment, error) {
	query := `SELECT ` + assessmentColumns + ` FROM atlas_assessments WHERE 1=1`
	args := []interface{}{}
	n := 0

	if filter.Status != nil {
		n++
		query += fmt.Sprintf(" AND status = $%d", n)
		args = append(args, string(*filter.Status))
	}
	if filter.AssetID != nil {
		n++
		query += fmt.Sprintf(" AND asset_id = $%d", n)
		args = append(args, *filter.AssetID)
	}

	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	n++
	query += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)

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

	var assessments []*risk.Assessment
	for rows.Next() {
		a := &risk.Assessment{}
		if err := rows.Scan(&a.ID, &a.AssetID, &a.PoF, &a.CoF, &a.RiskScore, &a.Level,
			&a.Justification, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}

func (s *PostgresStore) ListAssessmentScores(ctx context.Context) ([]float64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT risk_score FROM atlas_assessments WHERE status != 'archived'`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []float64
	for rows.Next() {
		var score float64
		if err := rows.Scan(&score); err != nil {
			return nil, err
		}
		scores = append(scores, score)
	}
	return scores, rows.Err()
}

func scanAssetIDs(rows pgx.Rows) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

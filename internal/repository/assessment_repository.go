package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/godilite/maturity-engine/internal/assessment"
	"github.com/godilite/maturity-engine/internal/repository/models"
)

var (
	ErrNotFound  = errors.New("assessment not found")
	ErrDuplicate = errors.New("assessment already stored")
)

// AssessmentRepository is the history store and persistence sink for assessments.
type AssessmentRepository struct {
	db *sql.DB
}

func NewAssessmentRepository(db *sql.DB) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// EnsureSchema creates the tables when they do not exist.
func (r *AssessmentRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range Schema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Save stores a completed assessment and its category scores in one transaction.
func (r *AssessmentRepository) Save(ctx context.Context, a assessment.Assessment) error {
	row, err := toRow(a)
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin Save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM assessments WHERE id = ?`, row.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("query Save: %w", err)
	}
	if exists > 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, row.ID)
	}

	const insertAssessment = `
		INSERT INTO assessments (id, subject_id, overall_score, maturity_level, source, document, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, insertAssessment,
		row.ID, row.SubjectID, row.OverallScore, row.MaturityLevel, row.Source, string(row.Document), row.CreatedAt); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}

	const insertScore = `
		INSERT INTO assessment_category_scores (assessment_id, category, score, responses)
		VALUES (?, ?, ?, ?)
	`
	for _, s := range categoryRows(a) {
		if _, err := tx.ExecContext(ctx, insertScore, s.AssessmentID, s.Category, s.Score, s.Responses); err != nil {
			return fmt.Errorf("insert category score: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit Save: %w", err)
	}
	return nil
}

// GetRecent returns up to limit assessments of subjectID, newest first.
func (r *AssessmentRepository) GetRecent(ctx context.Context, subjectID string, limit int) ([]assessment.Assessment, error) {
	if limit <= 0 {
		return []assessment.Assessment{}, nil
	}

	const query = `
		SELECT document
		FROM assessments
		WHERE subject_id = ?
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("query GetRecent: %w", err)
	}
	defer rows.Close()

	out := make([]assessment.Assessment, 0, limit)
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan GetRecent row: %w", err)
		}
		a, err := fromDocument(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetRecent: %w", err)
	}
	return out, nil
}

// GetByID returns ErrNotFound when no assessment has the id.
func (r *AssessmentRepository) GetByID(ctx context.Context, id string) (assessment.Assessment, error) {
	var doc string
	err := r.db.QueryRowContext(ctx, `SELECT document FROM assessments WHERE id = ?`, id).Scan(&doc)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return assessment.Assessment{}, ErrNotFound
		}
		return assessment.Assessment{}, fmt.Errorf("query GetByID: %w", err)
	}
	return fromDocument(doc)
}

func (r *AssessmentRepository) CountBySubject(ctx context.Context, subjectID string) (int64, error) {
	var count sql.NullInt64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(id) FROM assessments WHERE subject_id = ?`, subjectID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("query CountBySubject: %w", err)
	}
	return count.Int64, nil
}

// GetCategoryAverages computes every category's mean score across all of the subject's
// assessments in SQL, in category name order.
func (r *AssessmentRepository) GetCategoryAverages(ctx context.Context, subjectID string) ([]models.CategoryAverage, error) {
	const query = `
		SELECT
			cs.category,
			AVG(cs.score) AS average,
			COUNT(DISTINCT cs.assessment_id) AS assessments
		FROM assessment_category_scores AS cs
		JOIN assessments AS a ON a.id = cs.assessment_id
		WHERE a.subject_id = ?
		GROUP BY cs.category
		ORDER BY cs.category
	`
	rows, err := r.db.QueryContext(ctx, query, subjectID)
	if err != nil {
		return nil, fmt.Errorf("query GetCategoryAverages: %w", err)
	}
	defer rows.Close()

	var results []models.CategoryAverage
	for rows.Next() {
		var c models.CategoryAverage
		if err := rows.Scan(&c.Category, &c.Average, &c.Assessments); err != nil {
			return nil, fmt.Errorf("scan GetCategoryAverages row: %w", err)
		}
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate GetCategoryAverages: %w", err)
	}
	return results, nil
}

func toRow(a assessment.Assessment) (models.AssessmentRow, error) {
	doc, err := json.Marshal(a)
	if err != nil {
		return models.AssessmentRow{}, fmt.Errorf("encode assessment %s: %w", a.ID, err)
	}
	created := a.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	return models.AssessmentRow{
		ID:            a.ID,
		SubjectID:     a.SubjectID,
		OverallScore:  a.OverallScore,
		MaturityLevel: a.MaturityLevel.String(),
		Source:        string(a.Source),
		Document:      doc,
		CreatedAt:     created.UTC().UnixNano(),
	}, nil
}

func categoryRows(a assessment.Assessment) []models.CategoryScoreRow {
	out := make([]models.CategoryScoreRow, 0, len(a.CategoryScores))
	for _, c := range assessment.Categories {
		s, ok := a.CategoryScores[c]
		if !ok {
			continue
		}
		out = append(out, models.CategoryScoreRow{
			AssessmentID: a.ID,
			Category:     string(c),
			Score:        s.Value,
			Responses:    s.Responses,
		})
	}
	return out
}

func fromDocument(doc string) (assessment.Assessment, error) {
	var a assessment.Assessment
	if err := json.Unmarshal([]byte(doc), &a); err != nil {
		return assessment.Assessment{}, fmt.Errorf("decode assessment: %w", err)
	}
	return a, nil
}

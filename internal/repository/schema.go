package repository

// Schema creates the assessment tables. Every statement is idempotent.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS assessments (
		id             TEXT PRIMARY KEY,
		subject_id     TEXT NOT NULL,
		overall_score  REAL NOT NULL,
		maturity_level TEXT NOT NULL,
		source         TEXT NOT NULL,
		document       TEXT NOT NULL,
		created_at     INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assessments_subject_created
		ON assessments (subject_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS assessment_category_scores (
		assessment_id TEXT NOT NULL REFERENCES assessments (id) ON DELETE CASCADE,
		category      TEXT NOT NULL,
		score         REAL NOT NULL,
		responses     INTEGER NOT NULL,
		PRIMARY KEY (assessment_id, category)
	)`,
}

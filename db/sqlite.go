package db

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS predictions (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id TEXT NOT NULL DEFAULT '',
    hba1c_level REAL NOT NULL,
    blood_glucose_level INTEGER NOT NULL,
    age INTEGER NOT NULL,
    model_label INTEGER NOT NULL,
    guideline_category TEXT NOT NULL,
    agree INTEGER NOT NULL,
    created_at DATETIME NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);
CREATE TABLE IF NOT EXISTS training_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    model_name VARCHAR(50) NOT NULL,
    model_path TEXT NOT NULL,
    accuracy REAL,
    precision REAL,
    recall REAL,
    f1 REAL,
    max_depth INTEGER,
    trained_at DATETIME NOT NULL,
    data_points INTEGER
);
`

var ErrClosed = errors.New("database not initialized")

// Store keeps prediction history and training runs in SQLite.
type Store struct {
	db *sqlx.DB
}

// Open creates the database file (and its directory) if needed and applies
// the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("database path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent and avoids
	// SQLITE_BUSY between writers.
	database.SetMaxOpenConns(1)
	if _, err := database.Exec(schema); err != nil {
		database.Close()
		return nil, err
	}
	return &Store{db: database}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.PingContext(ctx)
}

type PredictionRecord struct {
	ID                int64     `db:"id" json:"id"`
	RequestID         string    `db:"request_id" json:"request_id,omitempty"`
	HbA1cLevel        float64   `db:"hba1c_level" json:"hba1c_level"`
	BloodGlucoseLevel int       `db:"blood_glucose_level" json:"blood_glucose_level"`
	Age               int       `db:"age" json:"age"`
	ModelLabel        int       `db:"model_label" json:"model_label"`
	GuidelineCategory string    `db:"guideline_category" json:"guideline_category"`
	Agree             bool      `db:"agree" json:"agree"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
}

func (s *Store) SavePrediction(ctx context.Context, rec PredictionRecord) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO predictions (
            request_id, hba1c_level, blood_glucose_level, age,
            model_label, guideline_category, agree, created_at
        ) VALUES (
            :request_id, :hba1c_level, :blood_glucose_level, :age,
            :model_label, :guideline_category, :agree, :created_at
        )`, rec)
	return err
}

// RecentPredictions returns up to limit rows, newest first.
func (s *Store) RecentPredictions(ctx context.Context, limit int) ([]PredictionRecord, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 50
	}
	records := make([]PredictionRecord, 0)
	err := s.db.SelectContext(ctx, &records, `
        SELECT id, request_id, hba1c_level, blood_glucose_level, age,
               model_label, guideline_category, agree, created_at
        FROM predictions
        ORDER BY created_at DESC, id DESC
        LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return records, nil
}

type TrainingLog struct {
	ModelName  string    `db:"model_name" json:"model_name"`
	ModelPath  string    `db:"model_path" json:"model_path"`
	Accuracy   float64   `db:"accuracy" json:"accuracy"`
	Precision  float64   `db:"precision" json:"precision"`
	Recall     float64   `db:"recall" json:"recall"`
	F1         float64   `db:"f1" json:"f1"`
	MaxDepth   int       `db:"max_depth" json:"max_depth"`
	TrainedAt  time.Time `db:"trained_at" json:"trained_at"`
	DataPoints int       `db:"data_points" json:"data_points"`
}

func (s *Store) SaveTrainingLog(ctx context.Context, entry TrainingLog) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	if entry.TrainedAt.IsZero() {
		entry.TrainedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
        INSERT INTO training_log (
            model_name, model_path, accuracy, precision, recall, f1,
            max_depth, trained_at, data_points
        ) VALUES (
            :model_name, :model_path, :accuracy, :precision, :recall, :f1,
            :max_depth, :trained_at, :data_points
        )`, entry)
	return err
}

func (s *Store) LoadTrainingLog(ctx context.Context) ([]TrainingLog, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	logs := make([]TrainingLog, 0)
	err := s.db.SelectContext(ctx, &logs, `
        SELECT model_name, model_path, accuracy, precision, recall, f1,
               max_depth, trained_at, data_points
        FROM training_log
        ORDER BY trained_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

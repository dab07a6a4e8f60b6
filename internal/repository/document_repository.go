package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/step-challenge-api/internal/models"
)

// DefaultDocumentID is the row holding the student dataset.
const DefaultDocumentID = "students"

const (
	createDocumentsTable = `CREATE TABLE IF NOT EXISTS challenge_documents (
    id TEXT PRIMARY KEY,
    payload TEXT NOT NULL,
    updated_at TIMESTAMP NOT NULL
)`
	selectDocument = `SELECT payload FROM challenge_documents WHERE id = ?`
	upsertDocument = `INSERT INTO challenge_documents (id, payload, updated_at) VALUES (?, ?, ?)
ON CONFLICT (id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`
)

// DocumentRepository stores the whole challenge dataset as a single JSON document.
// Every Save overwrites the document; there are no partial updates.
type DocumentRepository struct {
	db         *sqlx.DB
	documentID string
}

// NewDocumentRepository constructs a DocumentRepository over Postgres or SQLite.
func NewDocumentRepository(db *sqlx.DB, documentID string) *DocumentRepository {
	if documentID == "" {
		documentID = DefaultDocumentID
	}
	return &DocumentRepository{db: db, documentID: documentID}
}

// EnsureSchema creates the documents table when missing.
func (r *DocumentRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createDocumentsTable); err != nil {
		return fmt.Errorf("create challenge_documents: %w", err)
	}
	return nil
}

// Load fetches the entire dataset. A missing document is an empty dataset.
func (r *DocumentRepository) Load(ctx context.Context) (models.Dataset, error) {
	var payload string
	if err := r.db.GetContext(ctx, &payload, r.db.Rebind(selectDocument), r.documentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Dataset{}, nil
		}
		return nil, fmt.Errorf("load document %s: %w", r.documentID, err)
	}
	return decodeDataset([]byte(payload))
}

// Save overwrites the entire dataset.
func (r *DocumentRepository) Save(ctx context.Context, dataset models.Dataset) error {
	payload, err := encodeDataset(dataset)
	if err != nil {
		return err
	}
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(upsertDocument), r.documentID, string(payload), time.Now().UTC()); err != nil {
		return fmt.Errorf("save document %s: %w", r.documentID, err)
	}
	return nil
}

func encodeDataset(dataset models.Dataset) ([]byte, error) {
	if dataset == nil {
		dataset = models.Dataset{}
	}
	payload, err := json.Marshal(dataset)
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return payload, nil
}

func decodeDataset(payload []byte) (models.Dataset, error) {
	dataset := models.Dataset{}
	if err := json.Unmarshal(payload, &dataset); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	if dataset == nil {
		return models.Dataset{}, nil
	}
	for id, record := range dataset {
		if record.SubmittedDates == nil {
			record.SubmittedDates = []string{}
		}
		if record.DailyScreenshots == nil {
			record.DailyScreenshots = map[string]models.DayEntry{}
		}
		dataset[id] = record
	}
	return dataset, nil
}

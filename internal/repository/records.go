package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/vparedes/boletas-ocr/constants"
	"github.com/vparedes/boletas-ocr/internal/common"
	"github.com/vparedes/boletas-ocr/internal/entity"
	"github.com/vparedes/boletas-ocr/internal/record"
)

// RecordStore reads and writes processed document records.
type RecordStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func NewRecordStore(db *sql.DB, logger *slog.Logger) *RecordStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordStore{db: db, logger: logger}
}

// Save upserts one record. The payload is the schema-validated JSON
// serialization; a record that fails schema validation is a bug and is
// rejected here rather than stored malformed.
func (s *RecordStore) Save(ctx context.Context, rec entity.DocumentRecord) error {
	payload, err := record.MarshalValidated(rec)
	if err != nil {
		return common.WrapError(err, "serialize record")
	}

	status := constants.JobStatusParsed
	if rec.OCRFailed {
		status = constants.JobStatusFailed
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (id, source_path, status, engine, confidence, needs_review, missing_count, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status,
			confidence = excluded.confidence,
			needs_review = excluded.needs_review,
			missing_count = excluded.missing_count,
			payload = excluded.payload`,
		rec.ID.String(),
		rec.SourcePath,
		string(status),
		rec.Engine,
		float64(rec.Confidence),
		boolToInt(rec.NeedsReview),
		len(rec.MissingFields),
		string(payload),
		rec.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return common.NewAppError("DB_WRITE", "insert document record", err)
	}
	s.logger.Debug("record stored", "id", rec.ID, "status", status)
	return nil
}

// List returns every stored record, newest first, deserialized from the
// payload column.
func (s *RecordStore) List(ctx context.Context) ([]entity.DocumentRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM documents ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, common.NewAppError("DB_READ", "list document records", err)
	}
	defer rows.Close()

	var out []entity.DocumentRecord
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, common.NewAppError("DB_READ", "scan document record", err)
		}
		var rec entity.DocumentRecord
		if err := json.Unmarshal([]byte(payload), &rec); err != nil {
			return nil, common.WrapError(err, "decode stored record")
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CountNeedingReview returns how many stored records are flagged for manual
// review.
func (s *RecordStore) CountNeedingReview(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE needs_review = 1`).Scan(&n)
	if err != nil {
		return 0, common.NewAppError("DB_READ", "count review records", err)
	}
	return n, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

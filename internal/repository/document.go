package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/entity"
)

// Document statuses.
const (
	DocumentPending   = "PENDING"
	DocumentProcessed = "PROCESSED"
	DocumentFailed    = "FAILED"
)

// DocumentRow is one intake record of an uploaded file.
type DocumentRow struct {
	ID           string
	CompanyID    string
	Kind         constants.DocumentKind
	Document     entity.SourceDocument
	Status       string
	ErrorMessage *string
	UploadedAt   time.Time
	ProcessedAt  *time.Time
}

type DocumentRepository interface {
	GetByHash(ctx context.Context, companyID string, kind constants.DocumentKind, hashHex string) (DocumentRow, error)
	UpsertByHash(ctx context.Context, companyID string, kind constants.DocumentKind, doc entity.SourceDocument) (DocumentRow, bool, error)
	Finish(ctx context.Context, id, status string, errMsg *string, resultJSON []byte) error
}

type documentRepository struct {
	db     *DB
	logger *slog.Logger
}

func NewDocumentRepository(db *DB, logger *slog.Logger) DocumentRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &documentRepository{db: db, logger: logger}
}

func (r *documentRepository) GetByHash(ctx context.Context, companyID string, kind constants.DocumentKind, hashHex string) (DocumentRow, error) {
	b := r.db.builder()
	t := b.Table("source_documents")
	query, args := b.Select(t.C("id"), t.C("path"), t.C("filename"), t.C("format"), t.C("size_bytes"),
		t.C("status"), t.C("error_message"), t.C("uploaded_at"), t.C("processed_at")).
		From(t).
		Where(entsql.And(
			entsql.EQ(t.C("company_id"), companyID),
			entsql.EQ(t.C("kind"), string(kind)),
			entsql.EQ(t.C("hash_hex"), hashHex),
		)).
		Query()

	row := DocumentRow{CompanyID: companyID, Kind: kind}
	row.Document.HashHex = hashHex
	var id, format, errMsg text
	var uploaded, processed nullTime
	err := r.db.SQL().QueryRowContext(ctx, query, args...).Scan(&id, &row.Document.Path, &row.Document.Filename,
		&format, &row.Document.Size, &row.Status, &errMsg, &uploaded, &processed)
	if err != nil {
		return DocumentRow{}, classify(err)
	}
	row.ID = id.String
	row.Document.Format = constants.Format(format.String)
	row.ErrorMessage = errMsg.ptr()
	row.UploadedAt = uploaded.Time
	row.ProcessedAt = processed.ptr()
	return row, nil
}

// UpsertByHash returns the existing row for the same content, or inserts a PENDING one.
// The bool reports a duplicate: only PROCESSED rows count. FAILED or stale PENDING rows are
// reset to PENDING so the document is processed again.
func (r *documentRepository) UpsertByHash(ctx context.Context, companyID string, kind constants.DocumentKind, doc entity.SourceDocument) (DocumentRow, bool, error) {
	existing, err := r.GetByHash(ctx, companyID, kind, doc.HashHex)
	if err == nil {
		if existing.Status == DocumentProcessed {
			return existing, true, nil
		}
		return r.reset(ctx, existing, doc)
	}
	if !errors.Is(err, common.ErrNotFound) {
		return DocumentRow{}, false, err
	}

	row := DocumentRow{
		ID:         uuid.NewString(),
		CompanyID:  companyID,
		Kind:       kind,
		Document:   doc,
		Status:     DocumentPending,
		UploadedAt: time.Now().UTC(),
	}
	insert := r.db.builder().Insert("source_documents").
		Columns("id", "company_id", "path", "filename", "format", "kind", "size_bytes", "hash_hex", "status", "uploaded_at").
		Values(row.ID, companyID, doc.Path, doc.Filename, string(doc.Format), string(kind), doc.Size, doc.HashHex, row.Status, row.UploadedAt)
	if err := r.db.exec(ctx, r.db.SQL(), insert); err != nil {
		r.logger.Error("failed to record source document", "company_id", companyID, "path", doc.Path, "error", err)
		return DocumentRow{}, false, err
	}
	return row, false, nil
}

func (r *documentRepository) reset(ctx context.Context, row DocumentRow, doc entity.SourceDocument) (DocumentRow, bool, error) {
	now := time.Now().UTC()
	update := r.db.builder().Update("source_documents").
		Set("path", doc.Path).
		Set("filename", doc.Filename).
		Set("status", DocumentPending).
		Set("error_message", nil).
		Set("result_json", nil).
		Set("processed_at", nil).
		Set("uploaded_at", now).
		Where(entsql.EQ("id", row.ID))
	if err := r.db.exec(ctx, r.db.SQL(), update); err != nil {
		r.logger.Error("failed to reset source document", "id", row.ID, "error", err)
		return DocumentRow{}, false, err
	}
	r.logger.Info("retrying source document", "id", row.ID, "previous_status", row.Status)
	row.Document.Path = doc.Path
	row.Document.Filename = doc.Filename
	row.Status = DocumentPending
	row.ErrorMessage = nil
	row.ProcessedAt = nil
	row.UploadedAt = now
	return row, false, nil
}

// Finish stores the final status and the serialized batch result.
func (r *documentRepository) Finish(ctx context.Context, id, status string, errMsg *string, resultJSON []byte) error {
	var result any
	if resultJSON != nil {
		result = string(resultJSON)
	}
	update := r.db.builder().Update("source_documents").
		Set("status", status).
		Set("error_message", nullable(errMsg)).
		Set("result_json", result).
		Set("processed_at", time.Now().UTC()).
		Where(entsql.EQ("id", id))
	if err := r.db.exec(ctx, r.db.SQL(), update); err != nil {
		r.logger.Error("failed to finish source document", "id", id, "status", status, "error", err)
		return err
	}
	return nil
}

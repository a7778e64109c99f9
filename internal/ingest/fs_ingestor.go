package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/entity"
	"github.com/joseph-ayodele/payroll-intake/internal/repository"
)

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	Documents repository.DocumentRepository // optional; nil skips hash dedupe
	Logger    *slog.Logger
}

func NewFSIngestor(docs repository.DocumentRepository, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{Documents: docs, Logger: logger}
}

func (i *FSIngestor) IngestPath(ctx context.Context, companyID string, kind constants.DocumentKind, path string) (IngestionResult, error) {
	var out IngestionResult

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, err
	}

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.Logger.Warn("ingest.unsupported", "path", abs, "ext", ext)
		return out, fmt.Errorf("%w: %q", common.ErrUnsupportedFormat, ext)
	}

	doc, err := describe(abs)
	if err != nil {
		i.Logger.Error("ingest.read.failed", "path", abs, "error", err)
		return out, err
	}
	out = IngestionResult{Document: doc, UploadedAt: time.Now().UTC()}

	if i.Documents == nil {
		return out, nil
	}
	row, dedup, err := i.Documents.UpsertByHash(ctx, companyID, kind, doc)
	if err != nil {
		return out, err
	}
	out.DocumentID = row.ID
	out.Deduplicated = dedup
	out.UploadedAt = row.UploadedAt
	if dedup {
		i.Logger.Info("ingest.deduplicated", "path", abs, "document_id", row.ID, "hash", doc.HashHex)
	}
	return out, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(
	ctx context.Context,
	companyID string,
	kind constants.DocumentKind,
	root string,
	skipHidden bool,
) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []IngestionResult
	var stats DirStats
	// content already queued by this walk, keyed by sha256
	seen := map[string]string{}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{Document: entity.SourceDocument{Path: path}, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, companyID, kind, path)
		if err != nil {
			results = append(results, IngestionResult{Document: entity.SourceDocument{Path: path, Filename: d.Name()}, Err: err.Error()})
			stats.Failed++
			return nil
		}

		if id, ok := seen[r.Document.HashHex]; ok && !r.Deduplicated {
			r.Deduplicated = true
			r.DocumentID = id
		}
		seen[r.Document.HashHex] = r.DocumentID

		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	i.Logger.Info("ingest.directory.done", "root", root, "scanned", stats.Scanned, "matched", stats.Matched,
		"succeeded", stats.Succeeded, "deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return results, stats, nil
}

func describe(abs string) (entity.SourceDocument, error) {
	f, err := os.Open(abs)
	if err != nil {
		return entity.SourceDocument{}, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return entity.SourceDocument{}, fmt.Errorf("hash: %w", err)
	}
	return entity.SourceDocument{
		Path:     abs,
		Filename: filepath.Base(abs),
		Format:   constants.MapExtToFormat(filepath.Ext(abs)),
		Size:     n,
		HashHex:  hex.EncodeToString(h.Sum(nil)),
	}, nil
}

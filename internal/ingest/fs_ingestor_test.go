package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/common"
	"github.com/joseph-ayodele/payroll-intake/internal/repository"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestIngestPathDescribesDocument(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "Week 19.CSV")
	writeFile(t, p, "Name,Hours\nJane Doe,37.5\n")

	ing := NewFSIngestor(nil, nil)
	res, err := ing.IngestPath(context.Background(), "c1", constants.KindTimesheet, p)
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	doc := res.Document
	if doc.Format != constants.CSV || doc.Filename != "Week 19.CSV" || doc.Size != 25 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	if len(doc.HashHex) != 64 {
		t.Fatalf("expected sha256 hex, got %q", doc.HashHex)
	}
	if res.DocumentID != "" || res.Deduplicated {
		t.Fatalf("no repository configured, got %+v", res)
	}
}

func TestIngestPathRejectsUnsupported(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "legacy.xls")
	writeFile(t, p, "x")

	_, err := NewFSIngestor(nil, nil).IngestPath(context.Background(), "c1", constants.KindTimesheet, p)
	if !errors.Is(err, common.ErrUnsupportedFormat) {
		t.Fatalf("expected unsupported format, got %v", err)
	}
}

func TestIngestDirectoryDedupesByHash(t *testing.T) {
	ctx := context.Background()
	db, err := repository.OpenSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.csv"), "Name,Hours\nJane Doe,10\n")
	writeFile(t, filepath.Join(dir, "sub", "copy-of-a.csv"), "Name,Hours\nJane Doe,10\n")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, ".cache", "b.csv"), "Name,Hours\nJohn Roe,5\n")

	ing := NewFSIngestor(repository.NewDocumentRepository(db, nil), nil)
	results, stats, err := ing.IngestDirectory(ctx, "c1", constants.KindTimesheet, dir, true)
	if err != nil {
		t.Fatalf("ingest dir: %v", err)
	}
	if stats.Matched != 2 || stats.Succeeded != 2 || stats.Deduplicated != 1 || stats.Failed != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
	if len(results) != 2 || results[0].DocumentID == "" || results[0].DocumentID != results[1].DocumentID {
		t.Fatalf("expected both files to map to one document row, got %+v", results)
	}
}

func TestIngestRetriesFailedDocuments(t *testing.T) {
	ctx := context.Background()
	db, err := repository.OpenSQLite(ctx, ":memory:", nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(db.Close)
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	docs := repository.NewDocumentRepository(db, nil)
	ing := NewFSIngestor(docs, nil)

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "remit.csv"), "Person Name,Gross Pay\nJane Doe,100\n")

	first, _, err := ing.IngestDirectory(ctx, "c1", constants.KindRemittance, dir, true)
	if err != nil || len(first) != 1 {
		t.Fatalf("first ingest: %v %+v", err, first)
	}
	msg := "record store unavailable"
	if err := docs.Finish(ctx, first[0].DocumentID, repository.DocumentFailed, &msg, nil); err != nil {
		t.Fatalf("finish failed: %v", err)
	}

	retry, stats, err := ing.IngestDirectory(ctx, "c1", constants.KindRemittance, dir, true)
	if err != nil {
		t.Fatalf("retry ingest: %v", err)
	}
	if stats.Deduplicated != 0 || retry[0].Deduplicated || retry[0].DocumentID != first[0].DocumentID {
		t.Fatalf("failed document should be queued again on the same row, got %+v", retry[0])
	}
	row, err := docs.GetByHash(ctx, "c1", constants.KindRemittance, retry[0].Document.HashHex)
	if err != nil || row.Status != repository.DocumentPending || row.ErrorMessage != nil {
		t.Fatalf("expected row reset to PENDING, got %+v (%v)", row, err)
	}

	if err := docs.Finish(ctx, row.ID, repository.DocumentProcessed, nil, []byte(`{"success":true}`)); err != nil {
		t.Fatalf("finish processed: %v", err)
	}
	again, _, err := ing.IngestDirectory(ctx, "c1", constants.KindRemittance, dir, true)
	if err != nil || !again[0].Deduplicated {
		t.Fatalf("processed document should be skipped, got %+v (%v)", again, err)
	}
}

func TestIsHidden(t *testing.T) {
	if !IsHidden("/tmp/.git") || IsHidden("/tmp/payroll") || IsHidden(".") {
		t.Fatalf("IsHidden misclassified a path")
	}
}

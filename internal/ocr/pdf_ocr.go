package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/joseph-ayodele/payroll-intake/constants"
)

func init() {
	// pdfcpu would otherwise create a config dir under the user's home on first use
	api.DisableConfigDir()
}

// PageSeparator joins the text of consecutive PDF pages.
const PageSeparator = "\n\f\n"

func (e *Extractor) extractPDF(ctx context.Context, path string) (ExtractionResult, error) {
	res := ExtractionResult{
		SourceType: constants.PDF,
		Method:     "pdf-ocr",
		Language:   e.cfg.TesseractLang,
	}

	pageCount, err := api.PageCountFile(path)
	if err != nil {
		// pdftoppm is more forgiving than pdfcpu; keep going
		e.logger.Warn("ocr.pdf.inspect_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, "pdf inspection failed: "+err.Error())
	} else {
		res.Pages = pageCount
	}

	text, rendered, warns, err := e.pdfToOCR(ctx, path)
	res.Warnings = append(res.Warnings, warns...)
	if err == nil {
		res.Text = text
		if rendered > 0 {
			res.Pages = rendered
		}
		res.Confidence = heuristicConfidence(text)
		return res, nil
	}
	if ctx.Err() != nil {
		return res, ctx.Err()
	}

	e.logger.Warn("ocr.pdf.render_failed", "path", path, "error", err)
	res.Warnings = append(res.Warnings, "pdf render failed: "+err.Error())
	res.Method = "pdf-direct-ocr"

	raw, err := os.ReadFile(path)
	if err != nil {
		e.logger.Error("ocr.pdf.read_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, err.Error())
		return res, nil
	}
	txt, err := e.recognizer.RecognizeBytes(ctx, raw)
	if err != nil {
		e.logger.Error("ocr.pdf.direct_failed", "path", path, "error", err)
		res.Warnings = append(res.Warnings, "direct ocr failed: "+err.Error())
		return res, nil
	}
	res.Text = Normalize(txt)
	res.Confidence = heuristicConfidence(res.Text)
	return res, nil
}

// pdfToOCR rasterizes every page into a private temp dir, OCRs each page independently and
// removes the rasters on every return path. Page failures are reported as warnings.
func (e *Extractor) pdfToOCR(ctx context.Context, path string) (text string, pages int, warnings []string, err error) {
	tmpDir, err := os.MkdirTemp("", "pi-pp-*")
	if err != nil {
		return "", 0, nil, err
	}
	defer func(dir string) {
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", rmErr)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", fmt.Sprintf("%d", e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", fmt.Sprintf("%d", e.cfg.MaxPages))
	}
	args = append(args, path, prefix)

	// pdftoppm -r 300 -png <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...)
	if err != nil {
		return "", 0, []string{truncate(string(errb), 512)}, err
	}

	// pdftoppm zero-pads page numbers, so lexical order is page order
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return "", 0, nil, fmt.Errorf("pdftoppm produced no images")
	}

	var b strings.Builder
	var warns []string
	for i, img := range matches {
		txt, err := e.recognizer.RecognizeFile(ctx, img)
		if err != nil {
			if ctx.Err() != nil {
				return "", 0, warns, ctx.Err()
			}
			e.logger.Warn("ocr.pdf.page_failed", "path", path, "page", i+1, "error", err)
			warns = append(warns, fmt.Sprintf("page %d: %v", i+1, err))
			continue
		}
		if b.Len() > 0 {
			b.WriteString(PageSeparator)
		}
		b.WriteString(Normalize(txt))
	}
	return b.String(), len(matches), warns, nil
}

package ocr

import (
	"context"
	"fmt"
	"os"

	"github.com/otiai10/gosseract/v2"
)

// Recognizer is the OCR engine: image (or raw page bytes) in, text out.
type Recognizer interface {
	RecognizeFile(ctx context.Context, path string) (string, error)
	RecognizeBytes(ctx context.Context, data []byte) (string, error)
}

// CLIRecognizer shells out to the tesseract binary through a Runner.
type CLIRecognizer struct {
	cfg    Config
	runner Runner
}

func NewCLIRecognizer(cfg Config, runner Runner) *CLIRecognizer {
	return &CLIRecognizer{cfg: cfg, runner: runner}
}

func (r *CLIRecognizer) RecognizeFile(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", r.cfg.TesseractLang}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}
	if r.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", r.cfg.PSM))
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return reBoxNoise.ReplaceAllString(string(out), ""), nil
}

func (r *CLIRecognizer) RecognizeBytes(ctx context.Context, data []byte) (string, error) {
	return recognizeViaTempFile(ctx, r, data)
}

// GosseractRecognizer runs tesseract in-process through libtesseract bindings.
type GosseractRecognizer struct {
	lang        string
	tessdataDir string
	psm         int
}

func NewGosseractRecognizer(cfg Config) *GosseractRecognizer {
	return &GosseractRecognizer{lang: cfg.TesseractLang, tessdataDir: cfg.TessdataDir, psm: cfg.PSM}
}

func (g *GosseractRecognizer) RecognizeFile(ctx context.Context, path string) (string, error) {
	return g.recognize(ctx, func(c *gosseract.Client) error { return c.SetImage(path) })
}

func (g *GosseractRecognizer) RecognizeBytes(ctx context.Context, data []byte) (string, error) {
	return g.recognize(ctx, func(c *gosseract.Client) error { return c.SetImageFromBytes(data) })
}

func (g *GosseractRecognizer) recognize(ctx context.Context, setImage func(*gosseract.Client) error) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if g.tessdataDir != "" {
		if err := client.SetTessdataPrefix(g.tessdataDir); err != nil {
			return "", fmt.Errorf("gosseract tessdata: %w", err)
		}
	}
	if err := client.SetLanguage(g.lang); err != nil {
		return "", fmt.Errorf("gosseract language: %w", err)
	}
	if g.psm > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(g.psm)); err != nil {
			return "", fmt.Errorf("gosseract psm: %w", err)
		}
	}
	if err := setImage(client); err != nil {
		return "", fmt.Errorf("gosseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("gosseract: %w", err)
	}
	return text, nil
}

func recognizeViaTempFile(ctx context.Context, r Recognizer, data []byte) (string, error) {
	f, err := os.CreateTemp("", "pi-ocr-*")
	if err != nil {
		return "", err
	}
	defer func() { _ = os.Remove(f.Name()) }()
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return r.RecognizeFile(ctx, f.Name())
}

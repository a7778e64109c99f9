package vertex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/payroll-intake/internal/llm"
)

const providerName = "vertex"

type Config struct {
	Project  string
	Location string
	Model    string
	Timeout  time.Duration
}

// Client implements llm.EntityExtractor on Gemini through Vertex AI.
type Client struct {
	cfg      Config
	base     *genai.Client
	generate generateFunc
	logger   *slog.Logger
}

// generateFunc sends one system + user turn to the model.
type generateFunc func(ctx context.Context, model, system, user string) (*genai.GenerateContentResponse, error)

func NewClient(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Project == "" {
		return nil, errors.New("vertex: project is required")
	}
	if cfg.Location == "" {
		cfg.Location = "europe-west2"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	base, err := genai.NewClient(ctx, cfg.Project, cfg.Location)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	c := &Client{cfg: cfg, base: base, logger: logger}
	c.generate = c.generateContent
	return c, nil
}

func (c *Client) generateContent(ctx context.Context, modelName, system, user string) (*genai.GenerateContentResponse, error) {
	model := c.base.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	model.GenerationConfig = genai.GenerationConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}
	return model.GenerateContent(ctx, genai.Text(user))
}

func (c *Client) Close() error {
	if c.base == nil {
		return nil
	}
	return c.base.Close()
}

func (c *Client) ExtractEntities(ctx context.Context, req llm.ExtractRequest) (llm.Extraction, error) {
	rid := uuid.New().String()
	start := time.Now()
	c.logger.Info("llm.extract.start",
		"req_id", rid, "provider", providerName, "model", c.cfg.Model,
		"kind", req.Kind, "text_len", len(req.Text),
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.generate(ctx, c.cfg.Model, llm.BuildSystemPrompt(req.Kind), llm.BuildUserPrompt(req))
	if err != nil {
		if qerr := classify(err); qerr != nil {
			c.logger.Warn("llm.extract.quota", "req_id", rid, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds())
			return llm.Extraction{}, qerr
		}
		c.logger.Error("llm.extract.rpc_error", "req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return llm.Extraction{}, fmt.Errorf("vertex generate content: %w", err)
	}

	content := responseText(resp)
	if content == "" {
		c.logger.Error("llm.extract.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Extraction{}, errors.New("no text candidates in vertex response")
	}
	out, err := llm.DecodeResponse(req.Kind, content)
	if err != nil {
		c.logger.Error("llm.extract.decode_error", "req_id", rid, "error", err, "content_len", len(content))
		return out, err
	}
	out.Model = c.cfg.Model
	if len(out.Drift) > 0 {
		c.logger.Warn("llm.extract.schema_drift", "req_id", rid, "drift", out.Drift)
	}
	c.logger.Info("llm.extract.ok", "req_id", rid, "records", len(out.Records),
		"elapsed_ms", time.Since(start).Milliseconds())
	return out, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

// classify maps exhausted quota and overload statuses onto llm.ErrQuotaExceeded.
func classify(err error) *llm.QuotaError {
	switch status.Code(err) {
	case codes.ResourceExhausted:
		return &llm.QuotaError{Provider: providerName, Status: 429, Cause: err}
	case codes.Unavailable:
		return &llm.QuotaError{Provider: providerName, Status: 503, Cause: err}
	default:
		return nil
	}
}

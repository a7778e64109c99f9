package openai

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/uuid"
	goopenai "github.com/sashabaranov/go-openai"

	"github.com/joseph-ayodele/payroll-intake/internal/llm"
)

const providerName = "openai"

// ExtractEntities implements llm.EntityExtractor with one chat/completions call in JSON mode.
func (c *Client) ExtractEntities(ctx context.Context, req llm.ExtractRequest) (llm.Extraction, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"provider", providerName,
		"model", c.cfg.Model,
		"temp", c.cfg.Temperature,
		"kind", req.Kind,
		"text_len", len(req.Text),
	)

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, goopenai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Temperature: temperature(c.cfg.Temperature),
		ResponseFormat: &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleSystem, Content: llm.BuildSystemPrompt(req.Kind)},
			{Role: goopenai.ChatMessageRoleUser, Content: llm.BuildUserPrompt(req) + "\n\nReturn ONLY JSON."},
		},
	})
	if err != nil {
		if qerr := classify(err); qerr != nil {
			c.logger.Warn("llm.extract.quota",
				"req_id", rid, "status", qerr.Status, "error", err,
				"elapsed_ms", time.Since(start).Milliseconds(),
			)
			return llm.Extraction{}, qerr
		}
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Extraction{}, fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		c.logger.Error("llm.extract.no_choices", "req_id", rid, "elapsed_ms", time.Since(start).Milliseconds())
		return llm.Extraction{}, errors.New("no choices in openai response")
	}

	out, err := llm.DecodeResponse(req.Kind, resp.Choices[0].Message.Content)
	if err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "content_len", len(resp.Choices[0].Message.Content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return out, err
	}
	out.Model = resp.Model
	if out.Model == "" {
		out.Model = c.cfg.Model
	}
	if len(out.Drift) > 0 {
		c.logger.Warn("llm.extract.schema_drift", "req_id", rid, "drift", out.Drift)
	}

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"records", len(out.Records),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// classify maps rate-limit, exhausted-quota and overload replies onto llm.ErrQuotaExceeded.
func classify(err error) *llm.QuotaError {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		code, _ := apiErr.Code.(string)
		if apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
			apiErr.HTTPStatusCode == http.StatusServiceUnavailable ||
			code == "insufficient_quota" || code == "rate_limit_exceeded" ||
			apiErr.Type == "insufficient_quota" {
			return &llm.QuotaError{Provider: providerName, Status: apiErr.HTTPStatusCode, Cause: err}
		}
		return nil
	}
	var reqErr *goopenai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode == http.StatusServiceUnavailable {
			return &llm.QuotaError{Provider: providerName, Status: reqErr.HTTPStatusCode, Cause: err}
		}
	}
	return nil
}

// temperature works around omitempty on the request field: a literal 0 would be dropped
// and the server default used instead.
func temperature(t float32) float32 {
	if t <= 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

package vertex

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/joseph-ayodele/payroll-intake/constants"
	"github.com/joseph-ayodele/payroll-intake/internal/llm"
)

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{}
	for _, p := range parts {
		content.Parts = append(content.Parts, genai.Text(p))
	}
	return &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{Content: content}}}
}

func testClient(gen generateFunc) *Client {
	return &Client{
		cfg:      Config{Model: "gemini-1.5-pro", Timeout: time.Second},
		generate: gen,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestExtractEntitiesDecodesRemittance(t *testing.T) {
	var gotModel, gotSystem, gotUser string
	c := testClient(func(ctx context.Context, model, system, user string) (*genai.GenerateContentResponse, error) {
		if _, ok := ctx.Deadline(); !ok {
			t.Errorf("expected a request deadline")
		}
		gotModel, gotSystem, gotUser = model, system, user
		return textResponse("```json\n{\"records\":[{\"Person Name\":\"Jane Doe\",", "\"Gross Pay\":\"100.00\"}],\"Archer Ltd\":{\"Total\":\"100.00\"}}\n```"), nil
	})

	out, err := c.ExtractEntities(context.Background(), llm.ExtractRequest{
		Kind: constants.KindRemittance, Text: "Remittance advice Jane Doe 100.00", FilenameHint: "remit.pdf",
	})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if gotModel != "gemini-1.5-pro" || out.Model != "gemini-1.5-pro" {
		t.Fatalf("model = %q / %q", gotModel, out.Model)
	}
	if !strings.Contains(gotSystem, "Employe type (LTD/PAYE)") || !strings.Contains(gotUser, "Remittance advice Jane Doe") {
		t.Fatalf("prompts not built for the remittance kind")
	}
	if len(out.Records) != 1 || out.Records[0]["Person Name"] != "Jane Doe" {
		t.Fatalf("unexpected records: %+v", out.Records)
	}
	if strings.Join(out.KeyOrder, ",") != "records,Archer Ltd" {
		t.Fatalf("key order = %v", out.KeyOrder)
	}
}

func TestExtractEntitiesQuotaAndEmptyReplies(t *testing.T) {
	quota := testClient(func(context.Context, string, string, string) (*genai.GenerateContentResponse, error) {
		return nil, status.Error(codes.ResourceExhausted, "quota exceeded")
	})
	_, err := quota.ExtractEntities(context.Background(), llm.ExtractRequest{Kind: constants.KindTimesheet, Text: "x"})
	if !llm.IsQuota(err) {
		t.Fatalf("expected quota error, got %v", err)
	}

	hard := testClient(func(context.Context, string, string, string) (*genai.GenerateContentResponse, error) {
		return nil, status.Error(codes.PermissionDenied, "no access")
	})
	_, err = hard.ExtractEntities(context.Background(), llm.ExtractRequest{Kind: constants.KindTimesheet, Text: "x"})
	if err == nil || llm.IsQuota(err) {
		t.Fatalf("expected a hard error, got %v", err)
	}

	empty := testClient(func(context.Context, string, string, string) (*genai.GenerateContentResponse, error) {
		return &genai.GenerateContentResponse{}, nil
	})
	if _, err := empty.ExtractEntities(context.Background(), llm.ExtractRequest{Kind: constants.KindTimesheet, Text: "x"}); err == nil {
		t.Fatalf("expected an error for a reply without candidates")
	}
	if err := empty.Close(); err != nil {
		t.Fatalf("close without a base client: %v", err)
	}
}

func TestClassify(t *testing.T) {
	if q := classify(status.Error(codes.ResourceExhausted, "quota")); q == nil || !llm.IsQuota(q) {
		t.Fatalf("ResourceExhausted must be a quota error")
	}
	if q := classify(fmt.Errorf("wrapped: %w", status.Error(codes.Unavailable, "down"))); q == nil || q.Status != 503 {
		t.Fatalf("Unavailable must be a quota error, got %+v", q)
	}
	if q := classify(status.Error(codes.InvalidArgument, "bad")); q != nil {
		t.Fatalf("InvalidArgument must not be a quota error")
	}
	if q := classify(errors.New("plain")); q != nil {
		t.Fatalf("plain errors must not be quota errors")
	}
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text(`{"records":`), genai.Text(`[]}`)}},
	}}}
	if got := responseText(resp); got != `{"records":[]}` {
		t.Fatalf("responseText = %q", got)
	}
	if got := responseText(nil); got != "" {
		t.Fatalf("nil response should give empty text")
	}
}

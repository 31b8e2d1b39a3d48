package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shikshalabs/qpaper/internal/llm"
)

// SegmentPage implements llm.PageSegmenter over text-only chat/completions.
// One request per page; the caller owns page ordering and numbering
// continuity.
func (c *Client) SegmentPage(ctx context.Context, req llm.SegmentRequest) ([]llm.PageQuestion, error) {
	rid := uuid.New().String()
	start := time.Now()

	c.log.Info("segment.ai.start",
		"req_id", rid,
		"model", c.cfg.Model,
		"page", req.Page,
		"blocks", len(req.Blocks),
		"last_question_number", req.LastQuestionNumber,
	)

	body := map[string]any{
		"model":           c.cfg.Model,
		"temperature":     c.cfg.Temperature,
		"response_format": map[string]any{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": llm.BuildSystemPrompt()},
			{"role": "user", "content": llm.BuildPagePrompt(req)},
		},
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.log.Error("segment.ai.http_error",
			"req_id", rid, "page", req.Page, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.log.Error("segment.ai.decode_error",
			"req_id", rid, "page", req.Page, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("decode openai response: %w", err)
	}
	if len(cc.Choices) == 0 {
		c.log.Error("segment.ai.no_choices",
			"req_id", rid, "page", req.Page,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("no choices in openai response")
	}

	content := llm.StripCodeFences(cc.Choices[0].Message.Content)

	// Validate strictly against the segment schema before decoding.
	if err := llm.ValidateJSONAgainstSchema(llm.BuildSegmentJSONSchema(), []byte(content)); err != nil {
		c.log.Error("segment.ai.schema_validation_failed",
			"req_id", rid, "page", req.Page, "error", err,
			"content_bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, fmt.Errorf("%w: %v", llm.ErrContractViolation, err)
	}

	questions, err := llm.DecodeSegmentResponse(content)
	if err != nil {
		c.log.Error("segment.ai.contract_error",
			"req_id", rid, "page", req.Page, "error", err,
			"content_bytes", len(content),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	c.log.Info("segment.ai.ok",
		"req_id", rid,
		"page", req.Page,
		"questions", len(questions),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return questions, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openai http error: %w", err)
	}
	defer func(body io.ReadCloser) {
		if cerr := body.Close(); cerr != nil {
			c.log.Warn("openai response body close error", "error", cerr)
		}
	}(resp.Body)

	buf := new(bytes.Buffer)
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("read openai response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openai status %d: %s", resp.StatusCode, buf.String())
	}
	return buf.Bytes(), nil
}

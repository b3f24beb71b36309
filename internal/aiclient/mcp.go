package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/godilite/maturity-engine/internal/assessment"
)

const (
	// DefaultMCPBaseURL is where the MCP assessment server listens by default.
	DefaultMCPBaseURL = "http://localhost:3001"

	assessPath    = "/devops/assess"
	questionsPath = "/devops/generate-questions"

	maxResponseBytes = 1 << 20
)

// MCPClient talks to the MCP DevOps assessment server over HTTP. It makes a single
// attempt per call.
type MCPClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

type MCPOption func(*MCPClient)

// WithHTTPClient replaces the default client, whose timeout is the engine default.
func WithHTTPClient(c *http.Client) MCPOption {
	return func(m *MCPClient) {
		if c != nil {
			m.http = c
		}
	}
}

func WithMCPLogger(l *zap.Logger) MCPOption {
	return func(m *MCPClient) {
		if l != nil {
			m.logger = l
		}
	}
}

func NewMCPClient(baseURL string, opts ...MCPOption) *MCPClient {
	if baseURL == "" {
		baseURL = DefaultMCPBaseURL
	}
	m := &MCPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: assessment.DefaultAITimeout},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.Named("mcp-client")
	return m
}

// Assess implements assessment.Augmenter.
func (m *MCPClient) Assess(ctx context.Context, req assessment.AugmentRequest) (assessment.Payload, error) {
	body, err := m.post(ctx, assessPath, req)
	if err != nil {
		return assessment.Payload{}, err
	}
	return ParsePayload(body)
}

// GenerateQuestions implements assessment.QuestionGenerator.
func (m *MCPClient) GenerateQuestions(ctx context.Context, req assessment.QuestionRequest) ([]assessment.Question, error) {
	body, err := m.post(ctx, questionsPath, req)
	if err != nil {
		return nil, err
	}
	return ParseQuestions(body)
}

func (m *MCPClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, assessment.NewFailure(assessment.FailureMalformed, fmt.Errorf("encode request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, m.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, assessment.NewFailure(assessment.FailureTransport, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := m.http.Do(httpReq)
	if err != nil {
		return nil, classifyCallError(transportError(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, classifyCallError(transportError(err))
	}

	m.logger.Debug("mcp call completed",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, assessment.NewFailure(assessment.FailureStatus,
			fmt.Errorf("mcp %s returned %d: %s", path, resp.StatusCode, snippet(body)))
	}
	return body, nil
}

// transportError maps client timeouts onto context.DeadlineExceeded.
func transportError(err error) error {
	var te interface{ Timeout() bool }
	if errors.As(err, &te) && te.Timeout() {
		return fmt.Errorf("%w: %v", context.DeadlineExceeded, err)
	}
	return err
}

func snippet(body []byte) string {
	const n = 200
	s := strings.TrimSpace(string(body))
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

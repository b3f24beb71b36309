package aiclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/godilite/maturity-engine/internal/assessment"
)

type completerFunc func(ctx context.Context, system, prompt string) (string, error)

func (f completerFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}

func TestLLMService_Assess(t *testing.T) {
	var prompt string
	svc := NewLLMService(completerFunc(func(ctx context.Context, system, p string) (string, error) {
		prompt = p
		return "```json\n{\"maturity_score\": 80, \"maturity_level\": \"Advanced\"}\n```", nil
	}), nil)

	p, err := svc.Assess(context.Background(), assessment.AugmentRequest{
		SubjectID: "team-a",
		Responses: map[string]int{"observability": 5},
	})
	require.NoError(t, err)
	require.NotNil(t, p.MaturityScore)
	assert.Equal(t, 80.0, *p.MaturityScore)
	assert.Contains(t, prompt, `"team-a"`)
	assert.Contains(t, prompt, `"observability": 5`)
}

func TestLLMService_GenerateQuestions(t *testing.T) {
	var prompt string
	svc := NewLLMService(completerFunc(func(ctx context.Context, system, p string) (string, error) {
		prompt = p
		return `[{"id": "q1", "category": "Culture"}]`, nil
	}), nil)

	qs, err := svc.GenerateQuestions(context.Background(), assessment.QuestionRequest{
		SubjectID:  "team-a",
		SkillLevel: "advanced",
		Count:      4,
		FocusAreas: []assessment.Category{assessment.Culture, assessment.Delivery},
	})
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Contains(t, prompt, "Generate 4 DevOps maturity questions")
	assert.Contains(t, prompt, "advanced level")
	assert.Contains(t, prompt, "Concentrate on: Culture, Delivery.")
}

func TestLLMService_CallErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want assessment.FailureKind
	}{
		{"deadline", fmt.Errorf("post: %w", context.DeadlineExceeded), assessment.FailureTimeout},
		{"transport", errors.New("dial tcp: refused"), assessment.FailureTransport},
		{"classified", assessment.NewFailure(assessment.FailureStatus, errors.New("429")), assessment.FailureStatus},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewLLMService(completerFunc(func(ctx context.Context, system, prompt string) (string, error) {
				return "", tc.err
			}), nil)

			_, err := svc.Assess(context.Background(), assessment.AugmentRequest{})
			assert.Equal(t, tc.want, failureKind(t, err))

			_, err = svc.GenerateQuestions(context.Background(), assessment.QuestionRequest{})
			assert.Equal(t, tc.want, failureKind(t, err))
		})
	}
}

func TestNewLLMService_PanicsOnNilCompleter(t *testing.T) {
	assert.Panics(t, func() { NewLLMService(nil, nil) })
}

func TestNew(t *testing.T) {
	backend, closeFn, err := New(context.Background(), Config{Provider: ProviderNone}, nil)
	require.NoError(t, err)
	assert.Nil(t, backend)
	assert.NoError(t, closeFn())

	backend, _, err = New(context.Background(), Config{Provider: ProviderMCP}, nil)
	require.NoError(t, err)
	assert.IsType(t, &MCPClient{}, backend)

	_, _, err = New(context.Background(), Config{Provider: ProviderOpenAI}, nil)
	assert.Error(t, err)

	_, _, err = New(context.Background(), Config{Provider: "watson"}, nil)
	assert.Error(t, err)
}

package aiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/godilite/maturity-engine/internal/assessment"
)

var (
	errEmptyBody   = errors.New("empty response body")
	errNoQuestions = errors.New("response has no questions field")
)

// serviceError is returned as the error of a FailureServiceError so the message the
// service reported is kept.
type serviceError struct {
	msg string
}

func (e *serviceError) Error() string { return "ai service error: " + e.msg }

// text decodes a JSON string or number as a string.
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", b)
	}
	*t = text(n.String())
	return nil
}

// number decodes a JSON number or a numeric string.
type number float64

func (n *number) UnmarshalJSON(b []byte) error {
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		*n = number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("expected number, got %s", b)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return fmt.Errorf("expected number, got %q", s)
	}
	*n = number(f)
	return nil
}

// recommendation accepts either a full object or a bare action string.
type recommendation assessment.Recommendation

func (r *recommendation) UnmarshalJSON(b []byte) error {
	var action string
	if err := json.Unmarshal(b, &action); err == nil {
		*r = recommendation{Action: action, Priority: assessment.PriorityMedium}
		return nil
	}
	var obj struct {
		Area     text `json:"area"`
		Category text `json:"category"`
		Action   text `json:"action"`
		Title    text `json:"title"`
		Priority text `json:"priority"`
		Effort   text `json:"effort"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return err
	}
	*r = recommendation{
		Area:     string(firstText(obj.Area, obj.Category)),
		Action:   string(firstText(obj.Action, obj.Title)),
		Priority: string(obj.Priority),
		Effort:   string(obj.Effort),
	}
	return nil
}

type wireDORA struct {
	DeploymentFrequency text `json:"deployment_frequency"`
	LeadTime            text `json:"lead_time"`
	MTTR                text `json:"mttr"`
	ChangeFailureRate   text `json:"change_failure_rate"`
}

type wireAssessment struct {
	Error              json.RawMessage   `json:"error"`
	MaturityScore      *number           `json:"maturity_score"`
	OverallScore       *number           `json:"overall_score"`
	MaturityLevel      text              `json:"maturity_level"`
	CategoryScores     map[string]number `json:"category_scores"`
	DimensionalScores  map[string]number `json:"dimensional_scores"`
	Strengths          []string          `json:"strengths"`
	ImprovementAreas   []string          `json:"improvement_areas"`
	Recommendations    []recommendation  `json:"recommendations"`
	DORAPrediction     *wireDORA         `json:"dora_prediction"`
	NextSteps          []string          `json:"next_steps"`
	TransformationTime text              `json:"estimated_transformation_time"`
}

// ParsePayload decodes an AI assessment document. An error key, undecodable JSON or an
// empty body are reported as *assessment.AugmentationFailure.
func ParsePayload(body []byte) (assessment.Payload, error) {
	body = stripFences(body)
	if len(body) == 0 {
		return assessment.Payload{}, assessment.NewFailure(assessment.FailureMalformed, errEmptyBody)
	}

	var w wireAssessment
	if err := json.Unmarshal(body, &w); err != nil {
		return assessment.Payload{}, assessment.NewFailure(assessment.FailureMalformed, err)
	}
	if err := reportedError(w.Error); err != nil {
		return assessment.Payload{}, err
	}

	p := assessment.Payload{
		MaturityLevel:      strings.TrimSpace(string(w.MaturityLevel)),
		Strengths:          nonBlank(w.Strengths),
		ImprovementAreas:   nonBlank(w.ImprovementAreas),
		NextSteps:          nonBlank(w.NextSteps),
		TransformationTime: strings.TrimSpace(string(w.TransformationTime)),
	}
	if s := firstNumber(w.MaturityScore, w.OverallScore); s != nil {
		v := float64(*s)
		p.MaturityScore = &v
	}

	scores := w.CategoryScores
	if len(scores) == 0 {
		scores = w.DimensionalScores
	}
	if len(scores) > 0 {
		p.CategoryScores = make(map[assessment.Category]float64, len(scores))
		for name, v := range scores {
			if c, ok := assessment.ParseCategory(name); ok {
				p.CategoryScores[c] = float64(v)
			}
		}
	}

	for _, r := range w.Recommendations {
		if strings.TrimSpace(r.Action) == "" {
			continue
		}
		if r.Priority == "" {
			r.Priority = assessment.PriorityMedium
		}
		p.Recommendations = append(p.Recommendations, assessment.Recommendation(r))
	}

	if d := w.DORAPrediction; d != nil && d.DeploymentFrequency != "" {
		p.DORAPrediction = &assessment.DORAPrediction{
			DeploymentFrequency: string(d.DeploymentFrequency),
			LeadTime:            string(d.LeadTime),
			MTTR:                string(d.MTTR),
			ChangeFailureRate:   string(d.ChangeFailureRate),
		}
	}
	return p, nil
}

type wireQuestion struct {
	ID        text     `json:"id"`
	Category  text     `json:"category"`
	Question  text     `json:"question"`
	Text      text     `json:"text"`
	Options   []string `json:"options"`
	Type      text     `json:"type"`
	Weight    *number  `json:"weight"`
	Focus     text     `json:"focus"`
	FocusArea text     `json:"focus_area"`
}

func (q wireQuestion) toQuestion() assessment.Question {
	out := assessment.Question{
		ID:       strings.TrimSpace(string(q.ID)),
		Category: assessment.Category(strings.TrimSpace(string(q.Category))),
		Prompt:   string(firstText(q.Question, q.Text)),
		Options:  q.Options,
		Type:     assessment.QuestionType(strings.ToLower(string(q.Type))),
		Focus:    string(firstText(q.Focus, q.FocusArea)),
	}
	if q.Weight != nil {
		out.Weight = float64(*q.Weight)
	}
	return out
}

// ParseQuestions decodes an AI question list, given either as a bare array or as an
// object with a questions field. Entries are returned unsanitized.
func ParseQuestions(body []byte) ([]assessment.Question, error) {
	body = stripFences(body)
	if len(body) == 0 {
		return nil, assessment.NewFailure(assessment.FailureMalformed, errEmptyBody)
	}

	var list []wireQuestion
	if body[0] == '[' {
		if err := json.Unmarshal(body, &list); err != nil {
			return nil, assessment.NewFailure(assessment.FailureMalformed, err)
		}
	} else {
		var w struct {
			Error     json.RawMessage `json:"error"`
			Questions *[]wireQuestion `json:"questions"`
		}
		if err := json.Unmarshal(body, &w); err != nil {
			return nil, assessment.NewFailure(assessment.FailureMalformed, err)
		}
		if err := reportedError(w.Error); err != nil {
			return nil, err
		}
		if w.Questions == nil {
			return nil, assessment.NewFailure(assessment.FailureMalformed, errNoQuestions)
		}
		list = *w.Questions
	}

	out := make([]assessment.Question, 0, len(list))
	for _, q := range list {
		out = append(out, q.toQuestion())
	}
	return out, nil
}

func reportedError(raw json.RawMessage) error {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		msg = string(raw)
	}
	return assessment.NewFailure(assessment.FailureServiceError, &serviceError{msg: msg})
}

// stripFences removes surrounding whitespace and a markdown code fence, which LLMs
// often wrap JSON in.
func stripFences(body []byte) []byte {
	body = bytes.TrimSpace(body)
	if !bytes.HasPrefix(body, []byte("```")) {
		return body
	}
	body = bytes.TrimPrefix(body, []byte("```"))
	if nl := bytes.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	body = bytes.TrimSuffix(bytes.TrimSpace(body), []byte("```"))
	return bytes.TrimSpace(body)
}

func firstText(values ...text) text {
	for _, v := range values {
		if strings.TrimSpace(string(v)) != "" {
			return v
		}
	}
	return ""
}

func firstNumber(values ...*number) *number {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func nonBlank(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

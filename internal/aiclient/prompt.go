package aiclient

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/godilite/maturity-engine/internal/assessment"
)

const systemPrompt = "You are a DevOps transformation expert. You assess engineering teams across " +
	"collaboration, automation, monitoring, culture and delivery. Reply with a single JSON " +
	"object and nothing else."

const assessPrompt = `Assess the DevOps maturity of subject %q.

Questionnaire answers (question_id -> rating on a 1-5 scale):
%s

Previous assessments, newest first:
%s

Return JSON with these fields:
{
  "maturity_score": number 0-100,
  "maturity_level": one of "Novice", "Developing", "Intermediate", "Advanced", "Expert",
  "category_scores": {"Collaboration": 0-100, "Automation": 0-100, "Monitoring": 0-100, "Culture": 0-100, "Delivery": 0-100},
  "strengths": [string],
  "improvement_areas": [string],
  "recommendations": [{"area": string, "action": string, "priority": "High"|"Medium"|"Low", "effort": string}],
  "dora_prediction": {"deployment_frequency": string, "lead_time": string, "mttr": string, "change_failure_rate": string},
  "next_steps": [string],
  "estimated_transformation_time": string
}`

const questionsPrompt = `Generate %d DevOps maturity questions for subject %q at the %s level.
%s
Previous assessments, newest first:
%s

Return JSON: {"questions": [{"id": unique snake_case string, "category": one of "Collaboration", "Automation", "Monitoring", "Culture", "Delivery", "question": string, "options": [five answers ordered worst to best], "type": "multiple", "weight": number, "focus": string}]}`

func assessmentPrompt(req assessment.AugmentRequest) string {
	return fmt.Sprintf(assessPrompt, req.SubjectID, indent(req.Responses), indent(req.History))
}

func questionPrompt(req assessment.QuestionRequest) string {
	focus := ""
	if len(req.FocusAreas) > 0 {
		names := make([]string, len(req.FocusAreas))
		for i, c := range req.FocusAreas {
			names[i] = string(c)
		}
		focus = "Concentrate on: " + strings.Join(names, ", ") + ".\n"
	}
	return fmt.Sprintf(questionsPrompt, req.Count, req.SubjectID, req.SkillLevel, focus, indent(req.History))
}

func indent(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(b)
}

package assessment

import (
	"fmt"
	"slices"
)

const (
	// ImprovementThreshold is a raw rating of 2 after rescaling.
	ImprovementThreshold = 25.0
	// StrengthThreshold is a raw rating of 4 after rescaling.
	StrengthThreshold = 75.0

	maxRecommendations = 5
	maxNextStepSource  = 3
)

const (
	defaultStrength    = "Team shows potential for DevOps growth"
	defaultImprovement = "Continue building on existing strengths"
)

type categoryTemplate struct {
	recommendation Recommendation
	strength       string
	improvement    string
}

var templates = map[Category]categoryTemplate{
	Collaboration: {
		recommendation: Recommendation{
			Area:     "Team Collaboration",
			Action:   "Implement daily standups and regular team communication",
			Priority: PriorityHigh,
			Effort:   "2-3 weeks",
		},
		strength:    "Strong team collaboration and communication",
		improvement: "Team collaboration and communication practices",
	},
	Automation: {
		recommendation: Recommendation{
			Area:     "CI/CD Pipeline",
			Action:   "Set up basic automated build and deployment pipeline",
			Priority: PriorityHigh,
			Effort:   "4-6 weeks",
		},
		strength:    "Well-established automation practices",
		improvement: "Automation and CI/CD pipeline maturity",
	},
	Monitoring: {
		recommendation: Recommendation{
			Area:     "System Monitoring",
			Action:   "Implement basic application and infrastructure monitoring",
			Priority: PriorityMedium,
			Effort:   "2-4 weeks",
		},
		strength:    "Comprehensive monitoring and observability",
		improvement: "Monitoring and observability capabilities",
	},
	Culture: {
		recommendation: Recommendation{
			Area:     "DevOps Culture",
			Action:   "Establish blameless post-incident reviews and learning culture",
			Priority: PriorityMedium,
			Effort:   "Ongoing",
		},
		strength:    "Healthy DevOps culture and mindset",
		improvement: "DevOps culture and learning mindset",
	},
	Delivery: {
		recommendation: Recommendation{
			Area:     "Deployment Practices",
			Action:   "Increase deployment frequency and reduce batch sizes",
			Priority: PriorityHigh,
			Effort:   "6-8 weeks",
		},
		strength:    "Efficient delivery and deployment practices",
		improvement: "Delivery frequency and deployment practices",
	},
}

var defaultNextSteps = []string{
	"Conduct team DevOps readiness workshop",
	"Identify first automation opportunity",
	"Set up basic monitoring for key metrics",
}

// Recommend returns the canned recommendation of every category at or below the
// improvement threshold, lowest score first, at most five.
func Recommend(scores map[Category]CategoryScore) []Recommendation {
	weak := make([]Category, 0, len(Categories))
	for _, c := range Categories {
		if scores[c].Value <= ImprovementThreshold {
			weak = append(weak, c)
		}
	}
	slices.SortStableFunc(weak, func(a, b Category) int {
		switch va, vb := scores[a].Value, scores[b].Value; {
		case va < vb:
			return -1
		case va > vb:
			return 1
		default:
			return 0
		}
	})
	if len(weak) > maxRecommendations {
		weak = weak[:maxRecommendations]
	}

	out := make([]Recommendation, 0, len(weak))
	for _, c := range weak {
		out = append(out, templates[c].recommendation)
	}
	return out
}

// Strengths labels every category at or above the strength threshold.
func Strengths(scores map[Category]CategoryScore) []string {
	var out []string
	for _, c := range Categories {
		if scores[c].Value >= StrengthThreshold {
			out = append(out, templates[c].strength)
		}
	}
	if len(out) == 0 {
		return []string{defaultStrength}
	}
	return out
}

// ImprovementAreas labels every category at or below the improvement threshold.
func ImprovementAreas(scores map[Category]CategoryScore) []string {
	var out []string
	for _, c := range Categories {
		if scores[c].Value <= ImprovementThreshold {
			out = append(out, templates[c].improvement)
		}
	}
	if len(out) == 0 {
		return []string{defaultImprovement}
	}
	return out
}

// NextSteps turns the high-priority entries among the first three recommendations into
// actions, or returns the generic starter steps.
func NextSteps(recs []Recommendation) []string {
	var out []string
	for i, r := range recs {
		if i == maxNextStepSource {
			break
		}
		if r.Priority == PriorityHigh {
			out = append(out, "Start: "+r.Action)
		}
	}
	if len(out) == 0 {
		return slices.Clone(defaultNextSteps)
	}
	return out
}

// PredictDORA estimates DORA metrics from an overall score.
func PredictDORA(score float64) DORAPrediction {
	score = Clamp(score)
	frequency := "Monthly"
	if score > 50 {
		frequency = "Weekly"
	}
	return DORAPrediction{
		DeploymentFrequency: frequency,
		LeadTime:            fmt.Sprintf("%d days", max(1, int(14-score/10))),
		MTTR:                fmt.Sprintf("%d hours", max(1, int(24-score/5))),
		ChangeFailureRate:   fmt.Sprintf("%d%%", max(5, int(25-score/4))),
	}
}

// EstimateTransformationTime gives a rough timeline for reaching the next stage.
func EstimateTransformationTime(score float64) string {
	switch score = Clamp(score); {
	case score >= 70:
		return "2-3 months for optimization"
	case score >= 50:
		return "4-6 months for significant improvement"
	case score >= 30:
		return "6-9 months for comprehensive transformation"
	default:
		return "9-12 months for complete DevOps adoption"
	}
}

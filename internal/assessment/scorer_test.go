package assessment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustValidate(t *testing.T, raw map[string]int) ValidatedResponses {
	t.Helper()
	v, err := NewValidator(CoreQuestions).Validate(raw)
	require.NoError(t, err)
	return v
}

// TestScore_OnePerCategory covers a questionnaire with exactly one answer per category.
func TestScore_OnePerCategory(t *testing.T) {
	scores := Score(mustValidate(t, map[string]int{
		"collaboration_tools":  3,
		"ci_cd_pipeline":       2,
		"monitoring_alerting":  4,
		"psychological_safety": 3,
		"deployment_frequency": 2,
	}))

	want := map[Category]float64{
		Collaboration: 50,
		Automation:    25,
		Monitoring:    75,
		Culture:       50,
		Delivery:      25,
	}
	for c, v := range want {
		assert.Equal(t, v, scores.Categories[c].Value, string(c))
		assert.Equal(t, 1, scores.Categories[c].Responses, string(c))
	}
	assert.Equal(t, 45.0, scores.Overall)
	assert.Equal(t, Developing, Classify(scores.Overall))
}

func TestScore_Averaging(t *testing.T) {
	t.Run("answers within a category are averaged", func(t *testing.T) {
		scores := Score(mustValidate(t, map[string]int{
			"collaboration_tools":      5,
			"cross_team_communication": 2,
			"shared_responsibilities":  2,
		}))

		assert.Equal(t, 50.0, scores.Categories[Collaboration].Value)
		assert.Equal(t, 3, scores.Categories[Collaboration].Responses)
		// other categories are unanswered and count as zero
		assert.Equal(t, 10.0, scores.Overall)
	})

	t.Run("unanswered category scores zero with no responses", func(t *testing.T) {
		scores := Score(nil)

		for _, c := range Categories {
			assert.Equal(t, 0.0, scores.Categories[c].Value)
			assert.Equal(t, 0, scores.Categories[c].Responses)
		}
		assert.Equal(t, 0.0, scores.Overall)
		assert.Len(t, scores.Categories, len(Categories))
	})

	t.Run("categories count equally", func(t *testing.T) {
		scores := Score(mustValidate(t, map[string]int{
			"collaboration_tools":      5,
			"cross_team_communication": 5,
			"shared_responsibilities":  5,
			"ci_cd_pipeline":           1,
		}))

		assert.Equal(t, 20.0, scores.Overall)
	})
}

func TestScore_BoundsAndDeterminism(t *testing.T) {
	ids := make([]string, 0, len(CoreQuestions))
	for id := range CoreQuestions {
		ids = append(ids, id)
	}

	for seed := 0; seed < 50; seed++ {
		raw := make(map[string]int, len(ids))
		for i, id := range ids {
			raw[id] = (seed*7+i*3)%5 + 1
		}
		responses := mustValidate(t, raw)

		first := Score(responses)
		second := Score(responses)
		assert.Equal(t, first, second)

		assert.True(t, InRange(first.Overall))
		for _, cs := range first.Categories {
			assert.True(t, InRange(cs.Value))
		}
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		score float64
		want  MaturityLevel
	}{
		{0, Novice},
		{34.99, Novice},
		{35, Developing},
		{54.9, Developing},
		{55, Intermediate},
		{69.99, Intermediate},
		{70, Advanced},
		{84.99, Advanced},
		{85, Expert},
		{100, Expert},
		{-20, Novice},
		{250, Expert},
		{math.NaN(), Novice},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.score), "score %v", tc.score)
	}
}

func TestClassify_Monotone(t *testing.T) {
	prev := Classify(0)
	for s := 0.0; s <= 100; s += 0.25 {
		got := Classify(s)
		assert.GreaterOrEqual(t, got, prev, "score %v", s)
		prev = got
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, Clamp(-1))
	assert.Equal(t, 100.0, Clamp(100.5))
	assert.Equal(t, 42.5, Clamp(42.5))
	assert.Equal(t, 0.0, Clamp(math.NaN()))
	assert.False(t, InRange(math.Inf(1)))
}

func TestMaturityLevelJSON(t *testing.T) {
	b, err := Expert.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"Expert"`, string(b))

	var l MaturityLevel
	require.NoError(t, l.UnmarshalJSON([]byte(`"advanced"`)))
	assert.Equal(t, Advanced, l)
	assert.Error(t, l.UnmarshalJSON([]byte(`"Optimizing"`)))
}

package assessment

import "strings"

const (
	// WeakThreshold marks a category for targeted questions.
	WeakThreshold = 60.0

	perWeakCategory = 2
)

// WeakCategories returns every category below the weak threshold in the newest
// assessment, in canonical order. Empty history yields none.
func WeakCategories(history []Assessment) []Category {
	if len(history) == 0 {
		return nil
	}
	latest := history[0]
	var weak []Category
	for _, c := range Categories {
		score, ok := latest.CategoryScores[c]
		if ok && score.Value < WeakThreshold {
			weak = append(weak, c)
		}
	}
	return weak
}

// CurrentLevel is the newest assessment's level, or intermediate without history.
func CurrentLevel(history []Assessment) MaturityLevel {
	if len(history) == 0 {
		return Intermediate
	}
	return history[0].MaturityLevel
}

// Selection is the output of the static-bank algorithm.
type Selection struct {
	Questions []Question
	Level     MaturityLevel
	Targeted  []Category
}

// SelectFromBank builds up to count questions from the level's pool: first up to two per
// weak category (weak categories derived from history, then focus areas), then the rest of
// the pool in bank order. No question id is repeated.
//
// Targeted picks go round-robin across the targets (one question from each, then a second)
// rather than category by category, so a small count still covers every target.
func SelectFromBank(bank QuestionBank, history []Assessment, level MaturityLevel, count int, focus []Category) Selection {
	pool, poolLevel := bank.Pool(level)
	targets := mergeTargets(WeakCategories(history), focus)

	sel := Selection{Level: poolLevel, Targeted: targets}
	if count <= 0 {
		return sel
	}

	seen := make(map[string]struct{}, count)
	picked := make([]Question, 0, min(count, len(pool)))
	add := func(q Question) {
		if _, dup := seen[q.ID]; dup {
			return
		}
		seen[q.ID] = struct{}{}
		q.Difficulty = strings.ToLower(poolLevel.String())
		picked = append(picked, q)
	}

	// Targeted questions are taken round-robin so truncation keeps every weak category.
	for round := 0; round < perWeakCategory; round++ {
		for _, c := range targets {
			if q, ok := nextInCategory(pool, c, seen); ok {
				add(q)
			}
		}
	}
	for _, q := range pool {
		if len(picked) >= count {
			break
		}
		add(q)
	}

	if len(picked) > count {
		picked = picked[:count]
	}
	sel.Questions = picked
	return sel
}

// SanitizeQuestions drops questions without an id or a known category, removes duplicate
// ids and truncates to count.
func SanitizeQuestions(questions []Question, count int) []Question {
	if count <= 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(questions))
	out := make([]Question, 0, min(count, len(questions)))
	for _, q := range questions {
		if len(out) == count {
			break
		}
		if q.ID == "" {
			continue
		}
		c, ok := ParseCategory(string(q.Category))
		if !ok {
			continue
		}
		if _, dup := seen[q.ID]; dup {
			continue
		}
		seen[q.ID] = struct{}{}
		q.Category = c
		if q.Weight <= 0 {
			q.Weight = 1.0
		}
		if q.Type == "" {
			q.Type = QuestionMultiple
		}
		out = append(out, q)
	}
	return out
}

func nextInCategory(pool []Question, c Category, seen map[string]struct{}) (Question, bool) {
	for _, q := range pool {
		if q.Category != c {
			continue
		}
		if _, dup := seen[q.ID]; !dup {
			return q, true
		}
	}
	return Question{}, false
}

func mergeTargets(weak, focus []Category) []Category {
	out := make([]Category, 0, len(weak)+len(focus))
	seen := make(map[Category]struct{}, len(Categories))
	for _, list := range [][]Category{weak, focus} {
		for _, c := range list {
			if _, dup := seen[c]; dup {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

package ranking

// Evaluation measures a ranking against the known faulty components: every
// non-link component with health below 1.
type Evaluation struct {
	// Faulty is the number of ground-truth faults among the ranked components.
	Faulty int `json:"faulty"`

	// Found reports whether any ground-truth fault is ranked.
	Found bool `json:"found"`

	// Best is the first ground-truth fault in rank order.
	Best string `json:"best,omitempty"`

	// BestRank is the 1-based number of components a developer inspects
	// before reaching a true fault. Components tied with it count as
	// inspected first.
	BestRank int `json:"best_rank"`

	// Exam is BestRank divided by the number of ranked components.
	Exam float64 `json:"exam"`
}

// Evaluate scores a ranking against ground truth. A ranking without any
// faulty component yields Found == false and zero values.
func Evaluate(ranked []ScoredComponent) Evaluation {
	var ev Evaluation
	bestIdx := -1
	for i, sc := range ranked {
		if !sc.Component.Faulty() {
			continue
		}
		ev.Faulty++
		if bestIdx < 0 {
			bestIdx = i
		}
	}
	if bestIdx < 0 {
		return ev
	}

	ev.Found = true
	ev.Best = ranked[bestIdx].Component.Name
	score := ranked[bestIdx].Score
	for _, sc := range ranked {
		if sc.Score >= score {
			ev.BestRank++
		}
	}
	ev.Exam = float64(ev.BestRank) / float64(len(ranked))
	return ev
}

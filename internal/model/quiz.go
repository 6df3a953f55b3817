package model

// QuizProgress is the best-attempt summary stored for one quiz topic.
//
// It only ever moves forward: see Merge.
type QuizProgress struct {
	Passed    bool `json:"passed"`
	BestScore int  `json:"bestScore"`
	Attempts  int  `json:"attempts"`
	XP        int  `json:"xp"`
}

// Merge folds one completed attempt into the progress and returns the result.
//
//	bestScore = max(old, score)
//	attempts  = old + 1
//	passed    = old.passed || score >= passScore
//	xp        = old + earned
func (p QuizProgress) Merge(score, earned, passScore int) QuizProgress {
	return QuizProgress{
		Passed:    p.Passed || score >= passScore,
		BestScore: max(p.BestScore, score),
		Attempts:  p.Attempts + 1,
		XP:        p.XP + earned,
	}
}

package sm2

// QualityLabel pairs a quality score with presentation text for building
// a grading UI. The labels are presentation-only; the numeric values and
// the pass boundary at 3 must not change.
type QualityLabel struct {
	Quality Quality `json:"quality"`
	Label   string  `json:"label"`
	Hint    string  `json:"hint"`
}

// Labels returns the fixed, ordered quality-label table.
func Labels() []QualityLabel {
	return []QualityLabel{
		{Blackout, "Blackout", "no recall at all"},
		{Wrong, "Wrong", "incorrect, barely remembered"},
		{Hard, "Hard", "incorrect, but it felt familiar"},
		{Okay, "Okay", "correct with serious difficulty"},
		{Good, "Good", "correct with some hesitation"},
		{Easy, "Easy", "perfect recall"},
	}
}

package counter

// Delta is a commutative, associative update that can be combined with
// another update of the same kind.
type Delta[D any] interface {
	Merge(D) D
}

// Views counts quiz views.
type Views int64

// Merge adds two view counts.
func (v Views) Merge(other Views) Views {
	return v + other
}

// Submission counts answered quizzes by outcome.
type Submission struct {
	Correct   int64 `json:"correct"`
	Incorrect int64 `json:"incorrect"`
}

// SubmissionFor returns a delta of one answer.
func SubmissionFor(isCorrect bool) Submission {
	if isCorrect {
		return Submission{Correct: 1}
	}
	return Submission{Incorrect: 1}
}

// Merge adds both counts.
func (s Submission) Merge(other Submission) Submission {
	return Submission{
		Correct:   s.Correct + other.Correct,
		Incorrect: s.Incorrect + other.Incorrect,
	}
}

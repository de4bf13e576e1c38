package judge

import (
	"math"
	"strconv"
	"strings"
)

// Input is everything a policy may look at for one resolved question.
type Input struct {
	QuestionIndex int
	CorrectAnswer float64
	Submissions   []Submission // first-submitted order
	Buzzes        []Buzz       // lock order
}

// Verdict names the winner, if any. Winner is empty when nobody won.
type Verdict struct {
	Winner string
}

func (v Verdict) HasWinner() bool {
	return v.Winner != ""
}

// Policy decides the winner of a question.
type Policy interface {
	Name() string
	Decide(in Input) Verdict
}

// ClosestNumeric awards the submission nearest to the correct answer.
// Unparseable answers never win. Ties go to the first submitter.
type ClosestNumeric struct{}

func (ClosestNumeric) Name() string { return "closest" }

func (ClosestNumeric) Decide(in Input) Verdict {
	var (
		winner string
		best   = math.Inf(1)
	)
	for _, sub := range in.Submissions {
		value, ok := ParseAnswer(sub.Answer)
		if !ok {
			continue
		}
		diff := math.Abs(value - in.CorrectAnswer)
		// strict comparison keeps the earlier submitter on ties
		if diff < best {
			best = diff
			winner = sub.Identity
		}
	}
	return Verdict{Winner: winner}
}

// FirstLock awards the first buzz made during the question being judged.
type FirstLock struct{}

func (FirstLock) Name() string { return "buzzer" }

func (FirstLock) Decide(in Input) Verdict {
	for _, b := range in.Buzzes {
		if b.QuestionIndex == in.QuestionIndex {
			return Verdict{Winner: b.Identity}
		}
	}
	return Verdict{}
}

// ParseAnswer reads a raw answer as a finite number.
func ParseAnswer(raw string) (float64, bool) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, false
	}
	return value, true
}

// PolicyFor maps a scoring name to its policy. Unknown names get ClosestNumeric.
func PolicyFor(name string) Policy {
	if name == (FirstLock{}).Name() {
		return FirstLock{}
	}
	return ClosestNumeric{}
}

package judge

import "time"

// Buzz is one accepted buzzer press.
type Buzz struct {
	Identity      string    `json:"-"`
	Name          string    `json:"name"`
	Time          time.Time `json:"time"`
	QuestionIndex int       `json:"question_index"`
}

// Buzzer is a binary lock with a log of accepted buzzes. Only Reset unlocks it.
type Buzzer struct {
	locked bool
	log    []Buzz
}

func NewBuzzer() *Buzzer {
	return &Buzzer{}
}

// Press locks the buzzer for b if it is unlocked. A press while locked is
// dropped and reports false.
func (z *Buzzer) Press(b Buzz) bool {
	if z.locked {
		return false
	}
	z.locked = true
	z.log = append(z.log, b)
	return true
}

func (z *Buzzer) Locked() bool {
	return z.locked
}

func (z *Buzzer) Log() []Buzz {
	out := make([]Buzz, len(z.log))
	copy(out, z.log)
	return out
}

func (z *Buzzer) Reset() {
	z.locked = false
	z.log = nil
}

// Rekey moves logged buzzes from one identity to another.
func (z *Buzzer) Rekey(from, to string) {
	for i := range z.log {
		if z.log[i].Identity == from {
			z.log[i].Identity = to
		}
	}
}

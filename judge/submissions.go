package judge

import "time"

// Submission is one participant's raw answer for the current question.
type Submission struct {
	Identity string
	Answer   string
	At       time.Time
}

// Submissions records answers keyed by identity while remembering the order in
// which each identity first answered. Overwriting keeps the original position.
type Submissions struct {
	order []string
	byID  map[string]*Submission
}

func NewSubmissions() *Submissions {
	return &Submissions{byID: make(map[string]*Submission)}
}

// Record stores or overwrites the answer for identity.
func (s *Submissions) Record(identity, answer string, at time.Time) {
	if sub, ok := s.byID[identity]; ok {
		sub.Answer = answer
		sub.At = at
		return
	}
	s.byID[identity] = &Submission{Identity: identity, Answer: answer, At: at}
	s.order = append(s.order, identity)
}

func (s *Submissions) Has(identity string) bool {
	_, ok := s.byID[identity]
	return ok
}

func (s *Submissions) Get(identity string) (Submission, bool) {
	sub, ok := s.byID[identity]
	if !ok {
		return Submission{}, false
	}
	return *sub, true
}

func (s *Submissions) Len() int {
	return len(s.order)
}

// List returns the submissions in first-submitted order.
func (s *Submissions) List() []Submission {
	list := make([]Submission, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, *s.byID[id])
	}
	return list
}

// Rekey moves a submission to a new identity, keeping its position.
func (s *Submissions) Rekey(from, to string) {
	sub, ok := s.byID[from]
	if !ok || from == to {
		return
	}
	delete(s.byID, from)
	sub.Identity = to
	s.byID[to] = sub
	for i, id := range s.order {
		if id == from {
			s.order[i] = to
			break
		}
	}
}

func (s *Submissions) Clear() {
	s.order = nil
	s.byID = make(map[string]*Submission)
}

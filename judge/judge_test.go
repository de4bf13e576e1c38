package judge

import (
	"testing"
	"time"
)

func submissions(pairs ...string) []Submission {
	s := NewSubmissions()
	at := time.Unix(0, 0)
	for i := 0; i+1 < len(pairs); i += 2 {
		s.Record(pairs[i], pairs[i+1], at.Add(time.Duration(i)*time.Second))
	}
	return s.List()
}

func TestClosestNumeric_NearestWins(t *testing.T) {
	in := Input{
		CorrectAnswer: 50,
		Submissions:   submissions("A", "40", "B", "65", "C", "abc"),
	}

	v := ClosestNumeric{}.Decide(in)
	if v.Winner != "A" {
		t.Errorf("winner = %q, want %q", v.Winner, "A")
	}
}

func TestClosestNumeric_TieGoesToFirstSubmitter(t *testing.T) {
	in := Input{
		CorrectAnswer: 10,
		Submissions:   submissions("A", "8", "B", "12"),
	}

	v := ClosestNumeric{}.Decide(in)
	if v.Winner != "A" {
		t.Errorf("winner = %q, want %q", v.Winner, "A")
	}
}

func TestClosestNumeric_NoValidSubmissions(t *testing.T) {
	in := Input{
		CorrectAnswer: 10,
		Submissions:   submissions("A", "ten", "B", "", "C", "NaN"),
	}

	v := ClosestNumeric{}.Decide(in)
	if v.HasWinner() {
		t.Errorf("expected no winner, got %q", v.Winner)
	}

	if v := (ClosestNumeric{}).Decide(Input{CorrectAnswer: 1}); v.HasWinner() {
		t.Errorf("empty round should have no winner, got %q", v.Winner)
	}
}

func TestClosestNumeric_NegativeAndDecimal(t *testing.T) {
	in := Input{
		CorrectAnswer: -3.5,
		Submissions:   submissions("A", " -3 ", "B", "-3.6"),
	}

	if v := (ClosestNumeric{}).Decide(in); v.Winner != "B" {
		t.Errorf("winner = %q, want %q", v.Winner, "B")
	}
}

func TestSubmissions_OverwriteKeepsPosition(t *testing.T) {
	s := NewSubmissions()
	s.Record("A", "8", time.Unix(1, 0))
	s.Record("B", "12", time.Unix(2, 0))
	s.Record("A", "12", time.Unix(3, 0))

	list := s.List()
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].Identity != "A" || list[0].Answer != "12" {
		t.Errorf("first = %+v, want A with overwritten answer 12", list[0])
	}

	// both now diff 2 from 10, A still answered first
	if v := (ClosestNumeric{}).Decide(Input{CorrectAnswer: 10, Submissions: list}); v.Winner != "A" {
		t.Errorf("winner = %q, want %q", v.Winner, "A")
	}
}

func TestSubmissions_RekeyAndClear(t *testing.T) {
	s := NewSubmissions()
	s.Record("old", "1", time.Unix(1, 0))
	s.Record("B", "2", time.Unix(2, 0))

	s.Rekey("old", "new")
	if s.Has("old") || !s.Has("new") {
		t.Fatal("Rekey should move the submission to the new identity")
	}
	if s.List()[0].Identity != "new" {
		t.Errorf("rekeyed submission should keep its position, got %+v", s.List())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", s.Len())
	}
}

func TestFirstLock_OnlyCurrentQuestion(t *testing.T) {
	buzzes := []Buzz{
		{Identity: "A", Name: "Ann", QuestionIndex: 0},
		{Identity: "B", Name: "Bob", QuestionIndex: 1},
	}

	if v := (FirstLock{}).Decide(Input{QuestionIndex: 1, Buzzes: buzzes}); v.Winner != "B" {
		t.Errorf("winner = %q, want %q", v.Winner, "B")
	}
	if v := (FirstLock{}).Decide(Input{QuestionIndex: 2, Buzzes: buzzes}); v.HasWinner() {
		t.Errorf("stale buzzes should not win, got %q", v.Winner)
	}
}

func TestBuzzer_FirstPressLocks(t *testing.T) {
	z := NewBuzzer()

	if !z.Press(Buzz{Identity: "A", Name: "Ann"}) {
		t.Fatal("first press should be accepted")
	}
	if z.Press(Buzz{Identity: "B", Name: "Bob"}) {
		t.Fatal("press while locked should be dropped")
	}
	if !z.Locked() {
		t.Error("buzzer should be locked")
	}
	log := z.Log()
	if len(log) != 1 || log[0].Name != "Ann" {
		t.Errorf("log = %+v, want only Ann", log)
	}

	z.Reset()
	if z.Locked() || len(z.Log()) != 0 {
		t.Error("Reset should unlock and clear the log")
	}
	if !z.Press(Buzz{Identity: "B", Name: "Bob"}) {
		t.Error("press after reset should be accepted")
	}
}

func TestPolicyFor(t *testing.T) {
	if _, ok := PolicyFor("buzzer").(FirstLock); !ok {
		t.Error("buzzer should map to FirstLock")
	}
	if _, ok := PolicyFor("closest").(ClosestNumeric); !ok {
		t.Error("closest should map to ClosestNumeric")
	}
}

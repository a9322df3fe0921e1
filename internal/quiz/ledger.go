package quiz

// Ledger maps question ids to the selected slot. Last write wins.
type Ledger struct {
	known   map[int]struct{}
	answers map[int]Option
}

// NewLedger accepts answers only for the given questions.
func NewLedger(questions []Question) *Ledger {
	known := make(map[int]struct{}, len(questions))
	for _, q := range questions {
		known[q.ID] = struct{}{}
	}
	return &Ledger{
		known:   known,
		answers: make(map[int]Option, len(questions)),
	}
}

// Record stores the slot for questionID, replacing any earlier answer.
func (l *Ledger) Record(questionID int, slot Option) error {
	if _, ok := l.known[questionID]; !ok {
		return &InvalidAnswerError{QuestionID: questionID, Slot: slot, Reason: "question is not part of this quiz"}
	}
	if !slot.Valid() {
		return &InvalidAnswerError{QuestionID: questionID, Slot: slot, Reason: "option slot out of range"}
	}
	l.answers[questionID] = slot
	return nil
}

// Answered returns the number of distinct questions answered.
func (l *Ledger) Answered() int {
	return len(l.answers)
}

// Snapshot returns a copy unaffected by later writes.
func (l *Ledger) Snapshot() map[int]Option {
	out := make(map[int]Option, len(l.answers))
	for k, v := range l.answers {
		out[k] = v
	}
	return out
}

package domain

import "strings"

// Response carries a submitted answer. Exactly one field is read,
// chosen by the question's type.
type Response struct {
	SelectedIndex *int     `json:"selectedIndex,omitempty"`
	Text          string   `json:"text,omitempty"`
	Order         []int    `json:"order,omitempty"`
	_             struct{} // force keyed literals
}

// AnswerKey is the authoritative answer of a question, as a variant
// keyed by the question type.
type AnswerKey interface {
	Matches(Response) bool
}

// ChoiceKey is the answer key for mcq questions: one correct option index.
type ChoiceKey struct {
	Index int
}

func (k ChoiceKey) Matches(r Response) bool {
	return r.SelectedIndex != nil && *r.SelectedIndex == k.Index
}

// TextKey is the answer key for short_answer questions. Comparison is
// case-insensitive and whitespace-trimmed on both sides.
type TextKey struct {
	Answer string
}

func (k TextKey) Matches(r Response) bool {
	return normalize(r.Text) == normalize(k.Answer)
}

// OrderKey is the answer key for drag_drop questions: the correct
// permutation of option indices.
type OrderKey struct {
	Order []int
}

func (k OrderKey) Matches(r Response) bool {
	if len(r.Order) != len(k.Order) {
		return false
	}
	for i, v := range k.Order {
		if r.Order[i] != v {
			return false
		}
	}
	return true
}

// AnswerKey returns the variant selected by the question type, or nil
// when the type is unknown or the relevant field is missing.
func (q Question) AnswerKey() AnswerKey {
	switch q.Type {
	case TypeMCQ:
		if q.CorrectIndex != nil {
			return ChoiceKey{Index: *q.CorrectIndex}
		}
	case TypeShortAnswer:
		if q.CorrectAnswer != "" {
			return TextKey{Answer: q.CorrectAnswer}
		}
	case TypeDragDrop:
		if q.CorrectOrder != nil {
			return OrderKey{Order: q.CorrectOrder}
		}
	}
	return nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

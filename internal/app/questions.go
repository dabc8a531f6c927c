package app

import (
	"context"
	"encoding/json"
	"time"

	"lms-store-service/internal/domain"
)

// Points awarded per correct answer in the quiz game.
const answerPoints = 2

// QuestionPatch is a shallow merge for question edits. Slice fields use
// pointers so "absent" and "set to empty" stay distinguishable.
type QuestionPatch struct {
	Type          *domain.QuestionType
	QuestionText  *string
	Options       *[]string
	CorrectIndex  *int
	CorrectAnswer *string
	CorrectOrder  *[]int
	Difficulty    *string
	Tags          *[]string
}

// RawQuestion is the loosely-typed external shape accepted by bulk
// import. Answer may hold a number (choice index) or a string, decided
// by the item's type.
type RawQuestion struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Question      string          `json:"question"`
	QuestionText  string          `json:"questionText"`
	Options       []string        `json:"options"`
	Answer        json.RawMessage `json:"answer"`
	CorrectIndex  *int            `json:"correctIndex"`
	CorrectAnswer string          `json:"correctAnswer"`
	CorrectOrder  []int           `json:"correctOrder"`
	Difficulty    string          `json:"difficulty"`
	Tags          []string        `json:"tags"`
	Group         string          `json:"group"`
	CreatedAt     string          `json:"createdAt"`
}

// ListQuestions returns the questions collection in storage order.
func (s *StoreService) ListQuestions(ctx context.Context) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRepaired(ctx).Questions
}

// RandomQuestions draws up to count questions without replacement using
// an unbiased shuffle.
func (s *StoreService) RandomQuestions(ctx context.Context, count int) []domain.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	pool := make([]domain.Question, len(agg.Questions))
	copy(pool, agg.Questions)
	s.rnd.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	if count < 0 {
		count = 0
	}
	if count > len(pool) {
		count = len(pool)
	}
	return pool[:count]
}

// CreateQuestion assigns a fresh id and creation timestamp.
func (s *StoreService) CreateQuestion(ctx context.Context, q domain.Question) (domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	q.ID = s.newID("q_")
	q.CreatedAt = s.now().Format(time.RFC3339)
	agg.Questions = append(agg.Questions, q)
	if err := s.persist(ctx, agg); err != nil {
		return domain.Question{}, err
	}
	return q, nil
}

// UpdateQuestion shallow-merges the patch. Unknown id is a silent no-op.
func (s *StoreService) UpdateQuestion(ctx context.Context, id string, patch QuestionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	for i := range agg.Questions {
		if agg.Questions[i].ID != id {
			continue
		}
		q := &agg.Questions[i]
		if patch.Type != nil {
			q.Type = *patch.Type
		}
		if patch.QuestionText != nil {
			q.QuestionText = *patch.QuestionText
		}
		if patch.Options != nil {
			q.Options = *patch.Options
		}
		if patch.CorrectIndex != nil {
			q.CorrectIndex = patch.CorrectIndex
		}
		if patch.CorrectAnswer != nil {
			q.CorrectAnswer = *patch.CorrectAnswer
		}
		if patch.CorrectOrder != nil {
			q.CorrectOrder = *patch.CorrectOrder
		}
		if patch.Difficulty != nil {
			q.Difficulty = *patch.Difficulty
		}
		if patch.Tags != nil {
			q.Tags = *patch.Tags
		}
		return s.persist(ctx, agg)
	}
	return nil
}

// DeleteQuestion removes by id and reports whether a row actually went
// away, so the caller can tell a delete from a miss.
func (s *StoreService) DeleteQuestion(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	kept := agg.Questions[:0:0]
	for _, q := range agg.Questions {
		if q.ID != id {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(agg.Questions) {
		return false, nil
	}
	agg.Questions = kept
	if err := s.persist(ctx, agg); err != nil {
		return false, err
	}
	return true, nil
}

// CheckAnswer scores one submission against the question's answer key.
// Correct answers award a fixed number of points; accumulating them on
// the user is a separate UpdateScore call at the end of a game.
func (s *StoreService) CheckAnswer(ctx context.Context, questionID string, resp domain.Response) (domain.AnswerResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	for _, q := range agg.Questions {
		if q.ID != questionID {
			continue
		}
		key := q.AnswerKey()
		if key != nil && key.Matches(resp) {
			return domain.AnswerResult{QuestionID: questionID, Correct: true, Awarded: answerPoints}, nil
		}
		return domain.AnswerResult{QuestionID: questionID, Correct: false, Awarded: 0}, nil
	}
	return domain.AnswerResult{}, domain.ErrNotFound
}

// BulkImportQuestions maps the external shape onto the internal one and
// REPLACES the whole questions collection with the result. The overwrite
// is the contract (a re-seed from file), not an accident; tests pin it.
func (s *StoreService) BulkImportQuestions(ctx context.Context, raw []RawQuestion) ([]domain.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	mapped := make([]domain.Question, 0, len(raw))
	for _, r := range raw {
		mapped = append(mapped, s.mapRawQuestion(r))
	}
	agg.Questions = mapped
	if err := s.persist(ctx, agg); err != nil {
		return nil, err
	}
	return mapped, nil
}

func (s *StoreService) mapRawQuestion(r RawQuestion) domain.Question {
	typ := domain.QuestionType(r.Type)
	if r.Type == "multiple_choice" {
		typ = domain.TypeMCQ
	}

	text := r.Question
	if text == "" {
		text = r.QuestionText
	}

	correctIndex := r.CorrectIndex
	if typ == domain.TypeMCQ {
		if idx, ok := answerIndex(r.Answer); ok {
			correctIndex = &idx
		}
	}

	correctAnswer := r.CorrectAnswer
	if typ == domain.TypeShortAnswer {
		if text, ok := answerText(r.Answer); ok {
			correctAnswer = text
		}
	}

	difficulty := r.Difficulty
	if difficulty == "" {
		difficulty = domain.DifficultyMedium
	}

	tags := r.Tags
	if r.Group != "" {
		tags = []string{r.Group}
	}
	if tags == nil {
		tags = []string{}
	}

	options := r.Options
	if options == nil {
		options = []string{}
	}

	id := r.ID
	if id == "" {
		id = s.newID("q_")
	}
	createdAt := r.CreatedAt
	if createdAt == "" {
		createdAt = s.now().Format(time.RFC3339)
	}

	return domain.Question{
		ID:            id,
		Type:          typ,
		QuestionText:  text,
		Options:       options,
		CorrectIndex:  correctIndex,
		CorrectAnswer: correctAnswer,
		CorrectOrder:  r.CorrectOrder,
		Difficulty:    difficulty,
		Tags:          tags,
		CreatedAt:     createdAt,
	}
}

func answerIndex(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}
	var idx int
	if err := json.Unmarshal(raw, &idx); err != nil {
		return 0, false
	}
	return idx, true
}

func answerText(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return "", false
	}
	return text, true
}

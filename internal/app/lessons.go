package app

import (
	"context"
	"time"

	"lms-store-service/internal/domain"
)

// LessonPatch is a shallow merge for lesson edits.
type LessonPatch struct {
	Title       *string
	Description *string
	ContentHTML *string
	Grade       *string
	Tags        *[]string
}

// ListLessons returns the lessons collection in storage order.
func (s *StoreService) ListLessons(ctx context.Context) []domain.Lesson {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadRepaired(ctx).Lessons
}

// CreateLesson assigns a fresh id and creation timestamp.
func (s *StoreService) CreateLesson(ctx context.Context, lesson domain.Lesson) (domain.Lesson, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	lesson.ID = s.newID("l_")
	lesson.CreatedAt = s.now().Format(time.RFC3339)
	agg.Lessons = append(agg.Lessons, lesson)
	if err := s.persist(ctx, agg); err != nil {
		return domain.Lesson{}, err
	}
	return lesson, nil
}

// UpdateLesson shallow-merges the patch. Unknown id is a silent no-op.
func (s *StoreService) UpdateLesson(ctx context.Context, id string, patch LessonPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	for i := range agg.Lessons {
		if agg.Lessons[i].ID != id {
			continue
		}
		l := &agg.Lessons[i]
		if patch.Title != nil {
			l.Title = *patch.Title
		}
		if patch.Description != nil {
			l.Description = *patch.Description
		}
		if patch.ContentHTML != nil {
			l.ContentHTML = *patch.ContentHTML
		}
		if patch.Grade != nil {
			l.Grade = *patch.Grade
		}
		if patch.Tags != nil {
			l.Tags = *patch.Tags
		}
		return s.persist(ctx, agg)
	}
	return nil
}

// DeleteLesson removes by id; an unknown id is a silent no-op.
func (s *StoreService) DeleteLesson(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	kept := agg.Lessons[:0:0]
	for _, l := range agg.Lessons {
		if l.ID != id {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(agg.Lessons) {
		return nil
	}
	agg.Lessons = kept
	return s.persist(ctx, agg)
}

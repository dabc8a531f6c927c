package app

import (
	"time"

	"lms-store-service/internal/domain"
)

// Seed identifiers are stable so a reset store is always loginable with
// admin/admin.
const (
	SeedAdminID       = "u_admin"
	SeedAdminUsername = "admin"
	SeedAdminPassword = "admin"
)

func seedUsers(now time.Time) []domain.User {
	return []domain.User{{
		ID:         SeedAdminID,
		Username:   SeedAdminUsername,
		FullName:   "Administrator",
		Role:       domain.RoleAdmin,
		Password:   SeedAdminPassword,
		TotalScore: 0,
		CreatedAt:  now.Format(time.RFC3339),
	}}
}

func seedQuestions(now time.Time) []domain.Question {
	correct := 1
	return []domain.Question{{
		ID:           "VN-GEO-001",
		Type:         domain.TypeMCQ,
		QuestionText: "Which peak is the highest mountain in Vietnam?",
		Options:      []string{"Bạch Mã", "Fansipan", "Ngọc Linh", "Langbiang"},
		CorrectIndex: &correct,
		Difficulty:   domain.DifficultyEasy,
		Tags:         []string{"geography"},
		CreatedAt:    now.Format(time.RFC3339),
	}}
}

// SeedAggregate is the full default store: one admin account, one sample
// question, no lessons.
func SeedAggregate(now time.Time) domain.Aggregate {
	return domain.Aggregate{
		Users:     seedUsers(now),
		Questions: seedQuestions(now),
		Lessons:   []domain.Lesson{},
	}
}

package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"lms-store-service/internal/domain"
)

// UserFilter narrows ListUsers. Both filters compose with AND; zero
// values mean "no filter".
type UserFilter struct {
	Role   domain.Role
	Search string
}

// UserPatch is a shallow merge: nil fields keep their prior value, so an
// edit form can omit the password without blanking the credential.
type UserPatch struct {
	Username *string
	FullName *string
	Role     *domain.Role
	Password *string
}

// Authenticate scans for an exact username/password match. The returned
// token is deterministic per user; it is a session handle, not a secret.
func (s *StoreService) Authenticate(ctx context.Context, username, password string) (domain.AuthResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	for _, u := range agg.Users {
		if u.Username == username && u.Password == password {
			return domain.AuthResponse{User: u, Token: "session-" + u.ID}, nil
		}
	}
	return domain.AuthResponse{}, domain.ErrInvalidCredentials
}

// ListUsers returns users in storage order, optionally filtered by exact
// role and by case-insensitive substring on full name or username.
func (s *StoreService) ListUsers(ctx context.Context, filter UserFilter) []domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	users := make([]domain.User, 0, len(agg.Users))
	needle := strings.ToLower(filter.Search)
	for _, u := range agg.Users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(u.FullName), needle) &&
			!strings.Contains(strings.ToLower(u.Username), needle) {
			continue
		}
		users = append(users, u)
	}
	return users
}

// CreateUser assigns a fresh id, a creation timestamp, and a zero score.
func (s *StoreService) CreateUser(ctx context.Context, user domain.User) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	user.ID = s.newID("u_")
	user.CreatedAt = s.now().Format(time.RFC3339)
	user.TotalScore = 0
	agg.Users = append(agg.Users, user)
	if err := s.persist(ctx, agg); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// UpdateUser shallow-merges the patch into the stored user. An unknown
// id is a silent no-op.
func (s *StoreService) UpdateUser(ctx context.Context, id string, patch UserPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	for i := range agg.Users {
		if agg.Users[i].ID != id {
			continue
		}
		if patch.Username != nil {
			agg.Users[i].Username = *patch.Username
		}
		if patch.FullName != nil {
			agg.Users[i].FullName = *patch.FullName
		}
		if patch.Role != nil {
			agg.Users[i].Role = *patch.Role
		}
		if patch.Password != nil {
			agg.Users[i].Password = *patch.Password
		}
		return s.persist(ctx, agg)
	}
	return nil
}

// UpdateScore adds points to the user's total, treating a missing score
// as zero. The addition is unconditional; clamping is the caller's job.
func (s *StoreService) UpdateScore(ctx context.Context, id string, points int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	for i := range agg.Users {
		if agg.Users[i].ID != id {
			continue
		}
		agg.Users[i].TotalScore += points
		return s.persist(ctx, agg)
	}
	return nil
}

// DeleteUser removes by id. Nothing cascades; an unknown id is a silent
// no-op.
func (s *StoreService) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	kept := agg.Users[:0:0]
	for _, u := range agg.Users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	if len(kept) == len(agg.Users) {
		return nil
	}
	agg.Users = kept
	return s.persist(ctx, agg)
}

// Leaderboard ranks students by total score, descending, ties kept in
// storage order.
func (s *StoreService) Leaderboard(ctx context.Context, limit int) domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	agg := s.loadRepaired(ctx)
	return rankStudents(agg.Users, limit, s.now())
}

func rankStudents(users []domain.User, limit int, now time.Time) domain.Leaderboard {
	students := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.Role == domain.RoleStudent {
			students = append(students, u)
		}
	}
	sort.SliceStable(students, func(i, j int) bool {
		return students[i].TotalScore > students[j].TotalScore
	})
	if limit >= 0 && len(students) > limit {
		students = students[:limit]
	}

	entries := make([]domain.LeaderboardEntry, 0, len(students))
	for _, u := range students {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:     u.ID,
			Username:   u.Username,
			FullName:   u.FullName,
			TotalScore: u.TotalScore,
		})
	}
	return domain.Leaderboard{Entries: entries, UpdatedAt: now.Format(time.RFC3339)}
}

package app

import (
	"context"

	"lms-store-service/internal/domain"
)

// broadcastLimit caps the snapshot pushed to live subscribers.
const broadcastLimit = 10

// SubscribeLeaderboard returns a channel receiving a ranking snapshot
// after every mutation, starting with the current one. The caller must
// invoke the returned cancel function to avoid leaks.
func (s *StoreService) SubscribeLeaderboard(ctx context.Context) (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	initial := rankStudents(s.loadRepaired(ctx).Users, broadcastLimit, s.now())
	s.mu.Unlock()

	s.subMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subMu.Unlock()

	ch <- initial

	cancel := func() {
		s.subMu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.subMu.Unlock()
	}
	return ch, cancel
}

func (s *StoreService) broadcast(lb domain.Leaderboard) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale snapshot so a slow reader never blocks a mutation.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
}

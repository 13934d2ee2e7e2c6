package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/dkeye/LiveRoom/internal/domain"
)

func TestUsersGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewUsers()
	u, _ := domain.NewUser("alice")
	u.Diamonds = 10
	if err := s.Create(ctx, u); err != nil {
		t.Fatal(err)
	}
	got, _ := s.Get(ctx, u.ID)
	got.Diamonds = 0
	again, _ := s.Get(ctx, u.ID)
	if again.Diamonds != 10 {
		t.Fatalf("store mutated through returned copy: %d", again.Diamonds)
	}
}

func TestUsersUpdateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := NewUsers()
	a, _ := domain.NewUser("a")
	b, _ := domain.NewUser("b")
	a.Diamonds = 5
	_ = s.Create(ctx, a)
	_ = s.Create(ctx, b)

	_, err := s.Update(ctx, []domain.UserID{a.ID, b.ID}, func(m map[domain.UserID]*domain.User) error {
		m[b.ID].Earnings = 99
		return domain.ErrInsufficientFunds
	})
	if !errors.Is(err, domain.ErrInsufficientFunds) {
		t.Fatalf("got %v", err)
	}
	gb, _ := s.Get(ctx, b.ID)
	if gb.Earnings != 0 {
		t.Fatalf("earnings leaked: %d", gb.Earnings)
	}
}

func TestUsersConcurrentUpdatesDoNotLoseWrites(t *testing.T) {
	ctx := context.Background()
	s := NewUsers()
	u, _ := domain.NewUser("u")
	_ = s.Create(ctx, u)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.Update(ctx, []domain.UserID{u.ID}, func(m map[domain.UserID]*domain.User) error {
				m[u.ID].Diamonds++
				return nil
			})
		}()
	}
	wg.Wait()
	got, _ := s.Get(ctx, u.ID)
	if got.Diamonds != 100 {
		t.Fatalf("lost updates: %d", got.Diamonds)
	}
}

func TestFollowCountsMatchRelation(t *testing.T) {
	ctx := context.Background()
	f := NewFollows()
	pairs := [][2]domain.UserID{{"a", "b"}, {"c", "b"}, {"b", "a"}, {"a", "b"}}
	for _, p := range pairs {
		if _, err := f.Follow(ctx, p[0], p[1]); err != nil {
			t.Fatal(err)
		}
	}
	tests := []struct {
		id              domain.UserID
		following, fans int64
	}{
		{"a", 1, 1},
		{"b", 1, 2},
		{"c", 1, 0},
	}
	for _, tt := range tests {
		following, fans, _ := f.Counts(ctx, tt.id)
		if following != tt.following || fans != tt.fans {
			t.Errorf("%s: following=%d fans=%d, want %d/%d", tt.id, following, fans, tt.following, tt.fans)
		}
	}

	_ = f.RemoveUser(ctx, "b")
	for _, id := range []domain.UserID{"a", "c"} {
		following, fans, _ := f.Counts(ctx, id)
		if following != 0 || fans != 0 {
			t.Errorf("%s after remove: following=%d fans=%d", id, following, fans)
		}
	}
}

func TestJournalListByUser(t *testing.T) {
	ctx := context.Background()
	j := NewJournal()
	_ = j.Append(ctx,
		domain.PurchaseRecord{ID: "1", UserID: "u"},
		domain.PurchaseRecord{ID: "2", UserID: "v"},
		domain.PurchaseRecord{ID: "3", UserID: "u"},
	)
	recs, _ := j.ListByUser(ctx, "u", 0)
	if len(recs) != 2 || recs[0].ID != "3" {
		t.Fatalf("unexpected %+v", recs)
	}
}

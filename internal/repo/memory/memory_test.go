package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/stretchr/testify/require"
)

func newSpot(owner string) spot.WorkoutSpot {
	now := time.Now().UTC()
	return spot.WorkoutSpot{ID: spot.NewID(), Type: "bench", OwnerEmail: owner, CreatedAt: now, UpdatedAt: now}
}

func TestUsersRepoReturnsCopies(t *testing.T) {
	ctx := context.Background()
	users := NewDB().Users()

	require.NoError(t, users.Create(ctx, user.User{Email: "a@x.com", AddedSpots: user.IDSet{}}))

	u, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	u.AddedSpots.Add("leak")

	u, err = users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Empty(t, u.AddedSpots)
}

func TestUpdateProfileMovesKey(t *testing.T) {
	ctx := context.Background()
	users := NewDB().Users()

	require.NoError(t, users.Create(ctx, user.User{Email: "a@x.com"}))
	require.NoError(t, users.Create(ctx, user.User{Email: "b@x.com"}))

	require.ErrorIs(t, users.UpdateProfile(ctx, "a@x.com", "", "", "b@x.com"), user.ErrEmailTaken)
	require.ErrorIs(t, users.UpdateProfile(ctx, "ghost@x.com", "", "", "c@x.com"), user.ErrNotFound)
	require.NoError(t, users.UpdateProfile(ctx, "a@x.com", "A", "B", "c@x.com"))

	_, err := users.GetByEmail(ctx, "a@x.com")
	require.ErrorIs(t, err, user.ErrNotFound)

	u, err := users.GetByEmail(ctx, "c@x.com")
	require.NoError(t, err)
	require.Equal(t, "A", u.FirstName)
}

func TestSpotsRepoListsInInsertionOrder(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	spots := db.Spots()

	var ids []string
	for i := 0; i < 3; i++ {
		s := newSpot("a@x.com")
		ids = append(ids, s.ID)
		require.NoError(t, spots.Create(ctx, s))
	}

	require.NoError(t, spots.Delete(ctx, ids[1], "a@x.com"))

	all, err := spots.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, ids[0], all[0].ID)
	require.Equal(t, ids[2], all[1].ID)
}

func TestConcurrentCreatesKeepEveryIndexEntry(t *testing.T) {
	ctx := context.Background()
	db := NewDB()
	users, spots := db.Users(), db.Spots()

	require.NoError(t, users.Create(ctx, user.User{Email: "a@x.com"}))

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = spots.Create(ctx, newSpot("a@x.com"))
		}()
	}
	wg.Wait()

	u, err := users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	require.Equal(t, n, u.AddedSpots.Len())
}

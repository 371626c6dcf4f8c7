package handlers_test

import (
	"context"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

// Make sure Gin does not spam the console during the test
func init() {
	gin.SetMode(gin.TestMode)
}

const (
	spotA = "65f1c0ffee00000000000001"
	spotB = "65f1c0ffee00000000000002"
)

var alice = user.User{Email: "alice@x.com", FirstName: "Alice", AddedSpots: user.IDSet{spotA}}

// setupRouter mounts one handler behind a fake auth step that stashes u.
func setupRouter(method, path string, u *user.User, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	if u != nil {
		current := *u
		r.Use(func(c *gin.Context) {
			c.Set(middlewares.CtxUser, current)
			c.Set(middlewares.CtxEmail, current.Email)
			c.Next()
		})
	}

	r.Handle(method, path, h)

	return r
}

type fakeUsers struct {
	registerFn       func(ctx context.Context, email, password string) error
	authenticateFn   func(ctx context.Context, email, password string) (string, error)
	updateProfileFn  func(ctx context.Context, u user.User, req user.UpdateProfileRequest) error
	changePasswordFn func(ctx context.Context, u user.User, current, next string) error
	resolveTokenFn   func(ctx context.Context, token string) (user.User, error)
}

func (f *fakeUsers) Register(ctx context.Context, email, password string) error {
	if f.registerFn != nil {
		return f.registerFn(ctx, email, password)
	}
	return nil
}

func (f *fakeUsers) Authenticate(ctx context.Context, email, password string) (string, error) {
	if f.authenticateFn != nil {
		return f.authenticateFn(ctx, email, password)
	}
	return "token", nil
}

func (f *fakeUsers) UpdateProfile(ctx context.Context, u user.User, req user.UpdateProfileRequest) error {
	if f.updateProfileFn != nil {
		return f.updateProfileFn(ctx, u, req)
	}
	return nil
}

func (f *fakeUsers) ChangePassword(ctx context.Context, u user.User, current, next string) error {
	if f.changePasswordFn != nil {
		return f.changePasswordFn(ctx, u, current, next)
	}
	return nil
}

func (f *fakeUsers) ResolveToken(ctx context.Context, token string) (user.User, error) {
	if f.resolveTokenFn != nil {
		return f.resolveTokenFn(ctx, token)
	}
	return alice, nil
}

type fakeSpots struct {
	listFn     func(ctx context.Context) ([]spot.WorkoutSpot, error)
	listMineFn func(ctx context.Context, u user.User) ([]spot.WorkoutSpot, error)
	byIDsFn    func(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error)
	createFn   func(ctx context.Context, u user.User, req spot.CreateSpotRequest) (spot.WorkoutSpot, error)
	updateFn   func(ctx context.Context, u user.User, id string, patch spot.UpdateSpotRequest) error
	deleteFn   func(ctx context.Context, u user.User, id string) error
}

func (f *fakeSpots) List(ctx context.Context) ([]spot.WorkoutSpot, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []spot.WorkoutSpot{}, nil
}

func (f *fakeSpots) ListMine(ctx context.Context, u user.User) ([]spot.WorkoutSpot, error) {
	if f.listMineFn != nil {
		return f.listMineFn(ctx, u)
	}
	return []spot.WorkoutSpot{}, nil
}

func (f *fakeSpots) GetByIDs(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error) {
	if f.byIDsFn != nil {
		return f.byIDsFn(ctx, ids)
	}
	return []spot.WorkoutSpot{}, nil
}

func (f *fakeSpots) Create(ctx context.Context, u user.User, req spot.CreateSpotRequest) (spot.WorkoutSpot, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u, req)
	}
	return spot.WorkoutSpot{}, nil
}

func (f *fakeSpots) Update(ctx context.Context, u user.User, id string, patch spot.UpdateSpotRequest) error {
	if f.updateFn != nil {
		return f.updateFn(ctx, u, id, patch)
	}
	return nil
}

func (f *fakeSpots) Delete(ctx context.Context, u user.User, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, u, id)
	}
	return nil
}

type fakeFavorites struct {
	listFn   func(ctx context.Context, u user.User) ([]spot.WorkoutSpot, error)
	addFn    func(ctx context.Context, u user.User, id string) error
	removeFn func(ctx context.Context, u user.User, id string) error
}

func (f *fakeFavorites) List(ctx context.Context, u user.User) ([]spot.WorkoutSpot, error) {
	if f.listFn != nil {
		return f.listFn(ctx, u)
	}
	return []spot.WorkoutSpot{}, nil
}

func (f *fakeFavorites) Add(ctx context.Context, u user.User, id string) error {
	if f.addFn != nil {
		return f.addFn(ctx, u, id)
	}
	return nil
}

func (f *fakeFavorites) Remove(ctx context.Context, u user.User, id string) error {
	if f.removeFn != nil {
		return f.removeFn(ctx, u, id)
	}
	return nil
}

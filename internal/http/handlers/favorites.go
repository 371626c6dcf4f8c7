package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type FavoriteService interface {
	List(ctx context.Context, u user.User) ([]spot.WorkoutSpot, error)
	Add(ctx context.Context, u user.User, id string) error
	Remove(ctx context.Context, u user.User, id string) error
}

type FavoritesHandler struct {
	favorites FavoriteService
}

func NewFavoritesHandler(favorites FavoriteService) *FavoritesHandler {
	return &FavoritesHandler{favorites: favorites}
}

func (h *FavoritesHandler) List(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	spots, err := h.favorites.List(cctx, u)

	if err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not list favorites")
		return
	}

	ctx.JSON(http.StatusOK, spots)
}

func (h *FavoritesHandler) Add(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.favorites.Add(cctx, u, ctx.Param("id")); err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not add favorite")
		return
	}

	RespondMessage(ctx, "Added to favorites")
}

func (h *FavoritesHandler) Remove(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.favorites.Remove(cctx, u, ctx.Param("id")); err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not remove favorite")
		return
	}

	RespondMessage(ctx, "Removed from favorites")
}

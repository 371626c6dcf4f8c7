package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/spot"
	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type SpotService interface {
	List(ctx context.Context) ([]spot.WorkoutSpot, error)
	ListMine(ctx context.Context, u user.User) ([]spot.WorkoutSpot, error)
	GetByIDs(ctx context.Context, ids []string) ([]spot.WorkoutSpot, error)
	Create(ctx context.Context, u user.User, req spot.CreateSpotRequest) (spot.WorkoutSpot, error)
	Update(ctx context.Context, u user.User, id string, patch spot.UpdateSpotRequest) error
	Delete(ctx context.Context, u user.User, id string) error
}

type SpotsHandler struct {
	spots SpotService
}

func NewSpotsHandler(spots SpotService) *SpotsHandler {
	return &SpotsHandler{spots: spots}
}

// List returns every spot regardless of owner, with an ETag for conditional GETs.
func (h *SpotsHandler) List(ctx *gin.Context) {
	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	spots, err := h.spots.List(cctx)

	if err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not list spots")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, spots)
}

func (h *SpotsHandler) Mine(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	spots, err := h.spots.ListMine(cctx, u)

	if err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not list spots")
		return
	}

	ctx.JSON(http.StatusOK, spots)
}

func (h *SpotsHandler) ByIDs(ctx *gin.Context) {
	var req spot.ByIDsRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	spots, err := h.spots.GetByIDs(cctx, req.IDs)

	if err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not fetch spots")
		return
	}

	ctx.JSON(http.StatusOK, spots)
}

func (h *SpotsHandler) Create(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req spot.CreateSpotRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	created, err := h.spots.Create(cctx, u, req)

	if err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not create spot")
		return
	}

	ctx.JSON(http.StatusOK, created)
}

func (h *SpotsHandler) Update(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req spot.UpdateSpotRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.spots.Update(cctx, u, ctx.Param("id"), req); err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not update spot")
		return
	}

	RespondMessage(ctx, "Spot updated")
}

func (h *SpotsHandler) Delete(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.spots.Delete(cctx, u, ctx.Param("id")); err != nil {
		respondServiceError(ctx, err, "Spot not found", "Could not delete spot")
		return
	}

	RespondMessage(ctx, "Spot deleted")
}

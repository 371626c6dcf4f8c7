package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type ProfileService interface {
	UpdateProfile(ctx context.Context, u user.User, req user.UpdateProfileRequest) error
	ChangePassword(ctx context.Context, u user.User, current, next string) error
}

type ProfileHandler struct {
	users ProfileService
}

func NewProfileHandler(users ProfileService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

func (h *ProfileHandler) Get(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	ctx.JSON(http.StatusOK, u.Profile())
}

// Update changes names and email. Spots already owned keep the old owner_email.
func (h *ProfileHandler) Update(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.users.UpdateProfile(cctx, u, req); err != nil {
		respondServiceError(ctx, err, "User not found", "Could not update profile")
		return
	}

	RespondMessage(ctx, "Profile updated")
}

func (h *ProfileHandler) ChangePassword(ctx *gin.Context) {
	u, ok := currentUser(ctx)
	if !ok {
		return
	}

	var req user.ChangePasswordRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := h.users.ChangePassword(cctx, u, req.CurrentPassword, req.NewPassword); err != nil {
		respondServiceError(ctx, err, "User not found", "Could not change password")
		return
	}

	RespondMessage(ctx, "Password updated")
}

// currentUser reads the user stashed by RequireAuth.
func currentUser(ctx *gin.Context) (user.User, bool) {
	u, ok := middlewares.UserFromContext(ctx)
	if !ok {
		RespondUnauthorized(ctx, "unauthorized", "Missing identity context")
		return user.User{}, false
	}
	return u, true
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/healthmate/internal/domain/user"
	"github.com/geocoder89/healthmate/internal/service"
	"github.com/gin-gonic/gin"
)

type Registrar interface {
	Register(ctx context.Context, email, password string) error
	Authenticate(ctx context.Context, email, password string) (string, error)
}

type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (user.User, error)
}

type AuthHandler struct {
	users    Registrar
	identity TokenResolver
}

func NewAuthHandler(users Registrar, identity TokenResolver) *AuthHandler {
	return &AuthHandler{users: users, identity: identity}
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.RegisterRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := withTimeout(ctx, 3*time.Second)
	defer cancel()

	err := h.users.Register(cctx, req.Email, req.Password)

	if err != nil {
		respondServiceError(ctx, err, "User not found", "Could not create user")
		return
	}

	RespondMessage(ctx, "User registered")
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := withTimeout(ctx, 2*time.Second)
	defer cancel()

	token, err := h.users.Authenticate(cctx, req.Email, req.Password)

	// unknown email and wrong password look the same to the caller
	if errors.Is(err, service.ErrUnauthorized) {
		RespondUnauthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	if err != nil {
		respondServiceError(ctx, err, "User not found", "Could not log in")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"token": token})
}

// Me reads the token from the query string rather than the Authorization header.
func (h *AuthHandler) Me(ctx *gin.Context) {
	token := ctx.Query("token")

	if token == "" {
		RespondUnauthorized(ctx, "unauthorized", "Missing token")
		return
	}

	cctx, cancel := withTimeout(ctx, 2*time.Second)
	defer cancel()

	u, err := h.identity.ResolveToken(cctx, token)

	if err != nil {
		respondServiceError(ctx, err, "User not found", "Could not resolve token")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"email": u.Email})
}

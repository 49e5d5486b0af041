package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/storeapi/middleware"
	"github.com/cppla/storeapi/models"
	"github.com/cppla/storeapi/utils"
)

// UserStore is the persistence the account endpoints need.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// TokenRevoker records logged-out tokens.
type TokenRevoker interface {
	Revoke(ctx context.Context, token string, expiresAt time.Time) error
}

// UserController handles registration, login and the caller's own account.
type UserController struct {
	users    UserStore
	hasher   *utils.PasswordHasher
	tokens   *utils.TokenService
	revoker  TokenRevoker
	tokenTTL time.Duration
}

// NewUserController creates a UserController. Tokens issued at login live for tokenTTL.
func NewUserController(users UserStore, hasher *utils.PasswordHasher, tokens *utils.TokenService, revoker TokenRevoker, tokenTTL time.Duration) *UserController {
	return &UserController{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		revoker:  revoker,
		tokenTTL: tokenTTL,
	}
}

// Register creates a local account with a bcrypt hashed password.
func (u *UserController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,max=64"`
		Email    string `json:"email" binding:"required,email,max=255"`
		Password string `json:"password" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40001, "invalid request payload")
		return
	}

	hash, err := u.hasher.Hash(req.Password)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	}
	if err := u.users.CreateUser(ctx.Request.Context(), &user); err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.RequestLogger(ctx).Info("registered user", zap.String("username", user.Username), zap.Uint("user_id", user.ID))
	ctx.JSON(http.StatusCreated, gin.H{"message": "user created successfully", "id": user.ID})
}

// Login checks the credentials passed as query parameters and issues a bearer token.
func (u *UserController) Login(ctx *gin.Context) {
	var req struct {
		Username string `form:"username" binding:"required"`
		Password string `form:"password" binding:"required"`
	}
	if err := ctx.ShouldBindQuery(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40003, "username and password are required")
		return
	}

	user, err := u.users.FindUserByUsername(ctx.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			u.hasher.VerifyDummy(req.Password)
			utils.Unauthorized(ctx)
			return
		}
		utils.Fail(ctx, err)
		return
	}

	ok, err := u.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if !ok {
		utils.Unauthorized(ctx)
		return
	}

	token, err := u.tokens.Issue(utils.Identity{
		Subject: user.Username,
		UserID:  user.ID,
		Email:   user.Email,
	}, u.tokenTTL)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}

// Logout revokes the presented token until it would have expired anyway.
func (u *UserController) Logout(ctx *gin.Context) {
	token := ctx.GetString(middleware.ContextTokenKey)
	claims, err := u.tokens.Verify(token)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if err := u.revoker.Revoke(ctx.Request.Context(), token, claims.ExpiresAt.Time); err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// Me returns the authenticated caller.
func (u *UserController) Me(ctx *gin.Context) {
	user, ok := currentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx)
		return
	}
	ctx.JSON(http.StatusOK, user)
}

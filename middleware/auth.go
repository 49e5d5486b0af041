package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/storeapi/models"
	"github.com/cppla/storeapi/utils"
)

const (
	// ContextPrincipalKey stores the resolved *models.User for the current request.
	ContextPrincipalKey = "principal"
	// ContextTokenKey stores the raw bearer token for the current request.
	ContextTokenKey = "bearer_token"
)

// UserFinder is the part of the store the resolver needs.
type UserFinder interface {
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
}

// RevocationChecker reports tokens revoked before their expiry.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) bool
}

// Authenticator turns bearer tokens into principals.
type Authenticator struct {
	tokens  *utils.TokenService
	users   UserFinder
	revoked RevocationChecker
}

// NewAuthenticator builds a resolver; revoked may be nil.
func NewAuthenticator(tokens *utils.TokenService, users UserFinder, revoked RevocationChecker) *Authenticator {
	return &Authenticator{tokens: tokens, users: users, revoked: revoked}
}

// Resolve verifies the token and loads the user it names. Bad tokens, revoked
// tokens and unknown users all fail with the same utils.ErrInvalidCredentials.
func (a *Authenticator) Resolve(ctx context.Context, token string) (*models.User, error) {
	claims, err := a.tokens.Verify(token)
	if err != nil {
		return nil, utils.ErrInvalidCredentials
	}
	if a.revoked != nil && a.revoked.IsRevoked(ctx, token) {
		return nil, utils.ErrInvalidCredentials
	}
	if claims.Subject == "" {
		return nil, utils.ErrInvalidCredentials
	}

	user, err := a.users.FindUserByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.ErrInvalidCredentials
		}
		return nil, err
	}
	return user, nil
}

// Principal resolves the caller of the current request from its Authorization header.
// The result is kept on the gin context for the rest of this request only.
func (a *Authenticator) Principal(ctx *gin.Context) (*models.User, error) {
	if v, ok := ctx.Get(ContextPrincipalKey); ok {
		if user, ok := v.(*models.User); ok {
			return user, nil
		}
	}

	token, ok := BearerToken(ctx)
	if !ok {
		return nil, utils.ErrInvalidCredentials
	}
	user, err := a.Resolve(ctx.Request.Context(), token)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCredentials) {
			utils.RequestLogger(ctx).Debug("bearer token rejected", zap.String("path", ctx.FullPath()))
		}
		return nil, err
	}

	ctx.Set(ContextPrincipalKey, user)
	ctx.Set(ContextTokenKey, token)
	return user, nil
}

// AuthRequired ensures the request carries a valid bearer token for an existing user.
func (a *Authenticator) AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if _, err := a.Principal(ctx); err != nil {
			utils.Fail(ctx, err)
			ctx.Abort()
			return
		}
		ctx.Next()
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(ctx *gin.Context) (string, bool) {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

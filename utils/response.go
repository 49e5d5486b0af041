package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// JSONResponse defines the uniform structure for API error responses.
type JSONResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Respond writes a JSON response with the given status code.
func Respond(ctx *gin.Context, status int, code int, message string, data interface{}) {
	ctx.JSON(status, JSONResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Error returns a standard error response.
func Error(ctx *gin.Context, status int, code int, message string) {
	Respond(ctx, status, code, message, nil)
}

// Unauthorized answers 401 with the bearer challenge.
func Unauthorized(ctx *gin.Context) {
	ctx.Header("WWW-Authenticate", "Bearer")
	Error(ctx, http.StatusUnauthorized, 40101, ErrInvalidCredentials.Error())
}

// Fail maps an error kind to its HTTP status and writes the response.
// Anything outside the known kinds is logged and reported as a 500.
func Fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidCredentials):
		Unauthorized(ctx)
	case errors.Is(err, ErrForbidden):
		Error(ctx, http.StatusForbidden, 40301, ErrForbidden.Error())
	case errors.Is(err, ErrNotFound):
		Error(ctx, http.StatusNotFound, 40401, err.Error())
	case errors.Is(err, ErrConflict):
		Error(ctx, http.StatusBadRequest, 40009, err.Error())
	case errors.Is(err, ErrBadRequest):
		Error(ctx, http.StatusBadRequest, 40001, err.Error())
	default:
		Logger.Error("request failed",
			zap.Error(err),
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.String("request_id", ctx.GetString(RequestIDKey)),
		)
		Error(ctx, http.StatusInternalServerError, 50000, "internal server error")
	}
}

package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/cppla/storeapi/config"
	"github.com/cppla/storeapi/controllers"
	"github.com/cppla/storeapi/middleware"
	"github.com/cppla/storeapi/store"
	"github.com/cppla/storeapi/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg *config.AppConfig, st *store.Store, blacklist *utils.TokenBlacklist) (*gin.Engine, error) {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	tokens, err := utils.NewTokenService(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	hasher := utils.NewPasswordHasher(cfg.BcryptCost)
	if blacklist == nil {
		blacklist = utils.NewTokenBlacklist(nil)
	}

	r := gin.New()
	r.Use(middleware.RequestID())
	if cfg.GinLogPath != "" {
		gl, err := utils.NewRollingFileLogger(cfg.GinLogPath, cfg)
		if err != nil {
			return nil, err
		}
		r.Use(ginzap.GinzapWithConfig(gl, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        true,
			Context: func(c *gin.Context) []zapcore.Field {
				return []zapcore.Field{zap.String(utils.RequestIDKey, c.GetString(utils.RequestIDKey))}
			},
		}))
		r.Use(ginzap.RecoveryWithZap(gl, true))
	} else {
		r.Use(gin.Recovery())
	}
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	r.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"message": "Welcome to the Store API"})
	})
	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	auth := middleware.NewAuthenticator(tokens, st, blacklist)
	userController := controllers.NewUserController(st, hasher, tokens, blacklist, cfg.TokenTTL)
	postController := controllers.NewPostController(st, auth)

	users := r.Group("/users")
	users.POST("/register", userController.Register)
	users.GET("/login", userController.Login)
	users.POST("/logout", auth.AuthRequired(), userController.Logout)
	users.GET("/me", auth.AuthRequired(), userController.Me)

	posts := r.Group("/posts")
	posts.GET("/", postController.ListPosts)
	posts.POST("/", auth.AuthRequired(), postController.CreatePost)
	posts.GET("/:id", postController.GetPost)
	// Owner checks run inside the handlers after the resource is loaded, so 404 wins over 401.
	posts.PUT("/:id", postController.UpdatePost)
	posts.DELETE("/:id", postController.DeletePost)
	posts.GET("/:id/comments/", postController.ListComments)
	posts.POST("/:id/comments/", postController.CreateComment)
	posts.DELETE("/:id/comments/:comment_id", postController.DeleteComment)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

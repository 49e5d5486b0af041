package controllers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/storeapi/middleware"
	"github.com/cppla/storeapi/models"
	"github.com/cppla/storeapi/utils"
)

// PostStore is the persistence the post and comment endpoints need.
type PostStore interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	FindPost(ctx context.Context, id uint) (*models.Post, error)
	CreatePost(ctx context.Context, post *models.Post) error
	UpdatePost(ctx context.Context, id uint, title, content string) (*models.Post, error)
	DeletePost(ctx context.Context, id uint) error
	ListComments(ctx context.Context, postID uint) ([]models.Comment, error)
	FindComment(ctx context.Context, postID, id uint) (*models.Comment, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	DeleteComment(ctx context.Context, postID, id uint) error
}

// PostController manages CRUD operations for posts and comments.
type PostController struct {
	store PostStore
	auth  *middleware.Authenticator
}

// NewPostController creates a new PostController instance.
func NewPostController(store PostStore, auth *middleware.Authenticator) *PostController {
	return &PostController{store: store, auth: auth}
}

type postRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

// bind validates and sanitizes a post body, writing the 400 itself.
func (r *postRequest) bind(ctx *gin.Context) bool {
	if err := ctx.ShouldBindJSON(r); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return false
	}
	r.Title = utils.SanitizeTitle(r.Title)
	r.Content = utils.SanitizeContent(r.Content)
	if r.Title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40021, "title cannot be empty")
		return false
	}
	if strings.TrimSpace(r.Content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40024, "content cannot be empty")
		return false
	}
	return true
}

// ListPosts returns all posts. Public.
func (p *PostController) ListPosts(ctx *gin.Context) {
	posts, err := p.store.ListPosts(ctx.Request.Context())
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, posts)
}

// CreatePost stores a post owned by the authenticated caller.
func (p *PostController) CreatePost(ctx *gin.Context) {
	var req postRequest
	if !req.bind(ctx) {
		return
	}
	user, ok := currentUser(ctx)
	if !ok {
		utils.Unauthorized(ctx)
		return
	}

	post := models.Post{
		UserID:  user.ID,
		Title:   req.Title,
		Content: req.Content,
	}
	if err := p.store.CreatePost(ctx.Request.Context(), &post); err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.RequestLogger(ctx).Info("created post", zap.Uint("post_id", post.ID), zap.Uint("user_id", user.ID))
	ctx.JSON(http.StatusCreated, post)
}

// GetPost returns a single post with its comments. Public.
func (p *PostController) GetPost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	comments, err := p.store.ListComments(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"post": post, "comments": comments})
}

// UpdatePost lets the owner replace title and content.
func (p *PostController) UpdatePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	if _, ok := p.authorizeOwner(ctx, post.UserID); !ok {
		return
	}

	var req postRequest
	if !req.bind(ctx) {
		return
	}
	updated, err := p.store.UpdatePost(ctx.Request.Context(), post.ID, req.Title, req.Content)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

// DeletePost lets the owner delete a post and its comments.
func (p *PostController) DeletePost(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	user, ok := p.authorizeOwner(ctx, post.UserID)
	if !ok {
		return
	}
	if err := p.store.DeletePost(ctx.Request.Context(), post.ID); err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.RequestLogger(ctx).Info("deleted post", zap.Uint("post_id", post.ID), zap.Uint("user_id", user.ID))
	ctx.JSON(http.StatusOK, gin.H{"message": "post deleted successfully"})
}

// CreateComment lets any authenticated user comment on an existing post.
func (p *PostController) CreateComment(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	user, err := p.auth.Principal(ctx)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40022, "invalid request payload")
		return
	}
	content := utils.SanitizeContent(req.Content)
	if strings.TrimSpace(content) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40023, "content cannot be empty")
		return
	}

	comment := models.Comment{
		PostID:  post.ID,
		UserID:  user.ID,
		Content: content,
	}
	if err := p.store.CreateComment(ctx.Request.Context(), &comment); err != nil {
		utils.Fail(ctx, err)
		return
	}

	utils.RequestLogger(ctx).Info("added comment", zap.Uint("post_id", post.ID), zap.Uint("user_id", user.ID))
	ctx.JSON(http.StatusCreated, comment)
}

// ListComments returns the comments of an existing post. Public.
func (p *PostController) ListComments(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	comments, err := p.store.ListComments(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, comments)
}

// DeleteComment lets the comment owner delete it, provided it belongs to the post in the path.
func (p *PostController) DeleteComment(ctx *gin.Context) {
	post, ok := p.loadPost(ctx)
	if !ok {
		return
	}
	commentID, ok := parseID(ctx, "comment_id")
	if !ok {
		return
	}
	comment, err := p.store.FindComment(ctx.Request.Context(), post.ID, commentID)
	if err != nil {
		utils.Fail(ctx, err)
		return
	}
	if _, ok := p.authorizeOwner(ctx, comment.UserID); !ok {
		return
	}
	if err := p.store.DeleteComment(ctx.Request.Context(), post.ID, comment.ID); err != nil {
		utils.Fail(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}

// loadPost resolves the :id path parameter to a post, answering 400/404 itself.
func (p *PostController) loadPost(ctx *gin.Context) (*models.Post, bool) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return nil, false
	}
	post, err := p.store.FindPost(ctx.Request.Context(), id)
	if err != nil {
		utils.Fail(ctx, err)
		return nil, false
	}
	return post, true
}

// authorizeOwner resolves the caller and runs the ownership check against a loaded resource.
func (p *PostController) authorizeOwner(ctx *gin.Context, ownerID uint) (*models.User, bool) {
	user, err := p.auth.Principal(ctx)
	if err == nil {
		err = utils.CheckOwnership(ownerID, user.ID)
	}
	if err != nil {
		utils.Fail(ctx, err)
		return nil, false
	}
	return user, true
}

func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, strconv.IntSize)
	if err != nil || id == 0 {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func currentUser(ctx *gin.Context) (*models.User, bool) {
	value, exists := ctx.Get(middleware.ContextPrincipalKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok && user != nil
}

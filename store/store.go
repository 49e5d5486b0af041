// Package store persists users, posts and comments and enforces their
// uniqueness and reference invariants.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/storeapi/models"
	"github.com/cppla/storeapi/utils"
)

var (
	ErrUserNotFound    = fmt.Errorf("user %w", utils.ErrNotFound)
	ErrPostNotFound    = fmt.Errorf("post %w", utils.ErrNotFound)
	ErrCommentNotFound = fmt.Errorf("comment %w", utils.ErrNotFound)
	ErrUsernameTaken   = fmt.Errorf("username %w", utils.ErrConflict)
	ErrEmailTaken      = fmt.Errorf("email %w", utils.ErrConflict)

	errDuplicateUser = errors.New("duplicate user")
)

// Store is the gorm-backed credential and content store.
type Store struct {
	db *gorm.DB
}

// New wraps an opened gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// CreateUser inserts a user and fills in its ID.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if taken, err := exists(tx, &models.User{}, "username = ?", user.Username); err != nil {
			return err
		} else if taken {
			return ErrUsernameTaken
		}
		if taken, err := exists(tx, &models.User{}, "email = ?", user.Email); err != nil {
			return err
		} else if taken {
			return ErrEmailTaken
		}

		if err := tx.Create(user).Error; err != nil {
			if isUniqueViolation(err) {
				return errDuplicateUser
			}
			return fmt.Errorf("insert user: %w", err)
		}
		return nil
	})
	if errors.Is(err, errDuplicateUser) {
		return s.duplicateUserError(ctx, user)
	}
	return err
}

// FindUserByUsername looks a user up by exact, case-sensitive username.
func (s *Store) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	// MySQL's default collation compares case-insensitively.
	if user.Username != username {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// ListPosts returns every post, oldest first.
func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	posts := []models.Post{}
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// FindPost loads a post by id.
func (s *Store) FindPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := s.db.WithContext(ctx).First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("find post: %w", err)
	}
	return &post, nil
}

// CreatePost inserts a post. The owning user must exist.
func (s *Store) CreatePost(ctx context.Context, post *models.Post) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.User{}, "id = ?", post.UserID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrUserNotFound
		}
		if err := tx.Create(post).Error; err != nil {
			return fmt.Errorf("insert post: %w", err)
		}
		return nil
	})
}

// UpdatePost replaces title and content; the owner is never changed.
func (s *Store) UpdatePost(ctx context.Context, id uint, title, content string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Post{}).Where("id = ?", id).Updates(map[string]interface{}{
			"title":      title,
			"content":    content,
			"updated_at": time.Now(),
		})
		if res.Error != nil {
			return fmt.Errorf("update post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return tx.First(&post, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post together with its comments.
func (s *Store) DeletePost(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		res := tx.Delete(&models.Post{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete post: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrPostNotFound
		}
		return nil
	})
}

// ListComments returns the comments of a post, oldest first.
func (s *Store) ListComments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	if err := s.db.WithContext(ctx).Where("post_id = ?", postID).Order("id ASC").Find(&comments).Error; err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// FindComment loads a comment only if it belongs to the given post.
func (s *Store) FindComment(ctx context.Context, postID, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := s.db.WithContext(ctx).Where("post_id = ? AND id = ?", postID, id).First(&comment).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, fmt.Errorf("find comment: %w", err)
	}
	return &comment, nil
}

// CreateComment inserts a comment. The parent post must exist.
func (s *Store) CreateComment(ctx context.Context, comment *models.Comment) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ok, err := exists(tx, &models.Post{}, "id = ?", comment.PostID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrPostNotFound
		}
		if err := tx.Create(comment).Error; err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
}

// DeleteComment removes a comment of the given post.
func (s *Store) DeleteComment(ctx context.Context, postID, id uint) error {
	res := s.db.WithContext(ctx).Where("post_id = ? AND id = ?", postID, id).Delete(&models.Comment{})
	if res.Error != nil {
		return fmt.Errorf("delete comment: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// duplicateUserError names the column behind a unique violation lost to a
// concurrent insert. Translated driver errors do not say which index fired.
func (s *Store) duplicateUserError(ctx context.Context, user *models.User) error {
	taken, err := exists(s.db.WithContext(ctx), &models.User{}, "email = ?", user.Email)
	if err == nil && taken {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

func exists(tx *gorm.DB, model interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := tx.Model(model).Where(query, args...).Limit(1).Count(&n).Error; err != nil {
		return false, fmt.Errorf("check existence: %w", err)
	}
	return n > 0, nil
}

// isUniqueViolation recognises duplicate key errors from drivers with or without gorm's error translator.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "duplicate key value")
}

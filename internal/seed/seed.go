package seed

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"quorum/internal/models"

	"gorm.io/gorm"
)

// Options controls how much data is generated and how it is written.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// DryRun logs what would be created without touching the database.
	DryRun bool
	// SkipBcrypt stores plain passwords for throwaway dev databases.
	SkipBcrypt bool
	// MaxDays is the back-dating window for generated posts.
	MaxDays int
}

// Seed populates the database with sample users, posts, comments and likes.
func Seed(db *gorm.DB, opts Options) error {
	if opts.NumUsers <= 0 {
		opts.NumUsers = 10
	}
	if opts.NumPosts <= 0 {
		opts.NumPosts = 40
	}

	if opts.ShouldClean {
		if err := clearData(db, opts.DryRun); err != nil {
			return fmt.Errorf("clear data: %w", err)
		}
	}

	factory := NewFactory(db, opts)

	users := make([]*models.User, 0, opts.NumUsers)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := factory.CreateUser()
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}
	log.Printf("Seeded %d users", len(users))

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[i%len(users)]
		post, err := factory.CreatePost(author)
		if err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("Seeded %d posts", len(posts))

	// Roughly two comments per post, authored round-robin by other users.
	commentCount := 0
	comments := make([]*models.Comment, 0, len(posts)*2)
	for i, post := range posts {
		for j := 0; j < 2; j++ {
			author := users[(i+j+1)%len(users)]
			comment, err := factory.CreateComment(author, post)
			if err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
			comments = append(comments, comment)
			commentCount++
		}
	}
	log.Printf("Seeded %d comments", commentCount)

	// Each user likes a spread of posts and the occasional comment. The
	// unique index keeps accidental duplicates out.
	likeCount := 0
	for i, user := range users {
		for j, post := range posts {
			if (i+j)%3 != 0 {
				continue
			}
			if err := factory.CreatePostLike(user, post); err != nil {
				return fmt.Errorf("create post like: %w", err)
			}
			likeCount++
		}
		for j, comment := range comments {
			if (i+j)%7 != 0 {
				continue
			}
			if err := factory.CreateCommentLike(user, comment); err != nil {
				return fmt.Errorf("create comment like: %w", err)
			}
			likeCount++
		}
	}
	log.Printf("Seeded %d likes", likeCount)

	return nil
}

// clearData removes existing domain rows so a reseed starts clean.
func clearData(db *gorm.DB, dryRun bool) error {
	if dryRun {
		log.Println("[dry-run] would truncate likes, comments, posts, users")
		return nil
	}

	log.Println("Clearing existing data...")
	if db.Dialector.Name() == "sqlite" {
		// SQLite has no TRUNCATE; fall back to unscoped deletes in FK order.
		for _, model := range []interface{}{&models.Like{}, &models.Comment{}, &models.Post{}, &models.User{}} {
			if err := db.Session(&gorm.Session{AllowGlobalUpdate: true}).Unscoped().Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	}
	return db.Exec("TRUNCATE TABLE likes, comments, posts, users RESTART IDENTITY CASCADE").Error
}

// isDuplicateLike reports whether err is the unique-index violation raised by
// inserting a like that already exists.
func isDuplicateLike(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// Package seed populates the database with demo data for development.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Options configures the seeder.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
}

var tagPool = []string{
	"golang", "webdev", "databases", "writing", "productivity",
	"opensource", "devops", "design", "career", "ai",
	"books", "music", "travel", "food", "photography",
}

// Seed fills the database with users, posts, replies, and likes.
func Seed(db *gorm.DB, opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	ctx := context.Background()

	log.Printf("Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.ShouldClean {
		if err := clearData(db); err != nil {
			return fmt.Errorf("failed to clear existing data: %w", err)
		}
	}

	users, err := createUsers(db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}
	log.Printf("created %d users", len(users))

	postRepo := repository.NewPostRepository(db)
	replyRepo := repository.NewReplyRepository(db)

	posts := make([]*models.Post, 0, opts.NumPosts)
	for i := 0; i < opts.NumPosts; i++ {
		author := users[r.Intn(len(users))]
		content := gofakeit.Paragraph(2, 4, 12, " ")
		post := &models.Post{
			Title:       gofakeit.Sentence(6),
			Content:     content,
			Excerpt:     excerptOf(content),
			AuthorID:    author.ID,
			Tags:        pickTags(r),
			ReadingTime: readingTimeOf(content),
			CreatedAt:   spreadBack(r, 90),
		}
		if err := postRepo.Create(ctx, post); err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}
	log.Printf("created %d posts", len(posts))

	replies, err := createReplies(ctx, replyRepo, r, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create replies: %w", err)
	}
	log.Printf("created %d replies", replies)

	likes, err := createLikes(ctx, postRepo, replyRepo, r, users, posts)
	if err != nil {
		return fmt.Errorf("failed to create likes: %w", err)
	}
	log.Printf("created %d likes", likes)

	return nil
}

func createUsers(db *gorm.DB, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		username := strings.ToLower(gofakeit.Username())
		if len(username) > 16 {
			username = username[:16]
		}
		user := &models.User{
			ExternalID:   gofakeit.UUID(),
			Email:        gofakeit.Email(),
			Username:     fmt.Sprintf("%s%d", username, gofakeit.Number(10, 999)),
			DisplayName:  gofakeit.Name(),
			Bio:          gofakeit.Sentence(12),
			Tagline:      gofakeit.Phrase(),
			ProfilePhoto: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createReplies(ctx context.Context, repo repository.ReplyRepository, r *rand.Rand, users []*models.User, posts []*models.Post) (int, error) {
	total := 0
	for _, post := range posts {
		var topLevel []*models.Reply
		for i := 0; i < r.Intn(5); i++ {
			reply := &models.Reply{
				PostID:   post.ID,
				AuthorID: users[r.Intn(len(users))].ID,
				Content:  gofakeit.Sentence(10),
			}
			if err := repo.Create(ctx, reply); err != nil {
				return total, err
			}
			topLevel = append(topLevel, reply)
			total++
		}
		// Nest a few replies one level deep.
		for _, parent := range topLevel {
			for i := 0; i < r.Intn(3); i++ {
				parentID := parent.ID
				reply := &models.Reply{
					PostID:        post.ID,
					ParentReplyID: &parentID,
					AuthorID:      users[r.Intn(len(users))].ID,
					Content:       gofakeit.Sentence(8),
				}
				if err := repo.Create(ctx, reply); err != nil {
					return total, err
				}
				total++
			}
		}
	}
	return total, nil
}

func createLikes(ctx context.Context, postRepo repository.PostRepository, replyRepo repository.ReplyRepository, r *rand.Rand, users []*models.User, posts []*models.Post) (int, error) {
	total := 0
	for _, post := range posts {
		for _, user := range users {
			if r.Intn(4) != 0 {
				continue
			}
			if _, err := postRepo.ToggleLike(ctx, post.ID, user.ID); err != nil {
				return total, err
			}
			total++
		}
	}
	return total, nil
}

func clearData(db *gorm.DB) error {
	// Delete in FK-safe order.
	for _, model := range []any{
		&models.ReplyLike{},
		&models.PostLike{},
		&models.Reply{},
		&models.PostTag{},
		&models.Post{},
		&models.User{},
	} {
		if err := db.Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func pickTags(r *rand.Rand) []string {
	n := 1 + r.Intn(3)
	seen := make(map[string]struct{}, n)
	tags := make([]string, 0, n)
	for len(tags) < n {
		tag := tagPool[r.Intn(len(tagPool))]
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}

func spreadBack(r *rand.Rand, maxDays int) time.Time {
	return time.Now().
		Add(-time.Duration(r.Intn(maxDays)) * 24 * time.Hour).
		Add(-time.Duration(r.Intn(24)) * time.Hour).
		Add(-time.Duration(r.Intn(60)) * time.Minute)
}

func excerptOf(content string) string {
	runes := []rune(content)
	if len(runes) > 250 {
		runes = runes[:250]
	}
	return strings.TrimSpace(string(runes)) + "..."
}

func readingTimeOf(content string) int {
	minutes := (len(strings.Fields(content)) + 199) / 200
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

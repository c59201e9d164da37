package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestUserRepository_GetByExternalID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		rows := sqlmock.NewRows([]string{"id", "external_id", "username"}).
			AddRow(1, "ext-123", "alice")
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE external_id = $1 ORDER BY "users"."id" LIMIT $2`)).
			WithArgs("ext-123", 1).
			WillReturnRows(rows)

		user, err := repo.GetByExternalID(ctx, "ext-123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Not Found", func(t *testing.T) {
		mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE external_id = $1 ORDER BY "users"."id" LIMIT $2`)).
			WithArgs("missing", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.GetByExternalID(ctx, "missing")
		assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_SumPostLikesByAuthor(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(SUM(likes_count), 0) FROM "posts" WHERE author_id = $1`)).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(42))

	sum, err := repo.SumPostLikesByAuthor(context.Background(), 7)
	require.NoError(t, err)
	assert.EqualValues(t, 42, sum)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice_dev")
	alice.Tagline = "gopher at heart"
	require.NoError(t, repo.Update(ctx, alice))
	seedUser(t, db, "bob")

	// Case-insensitive match on username.
	users, err := repo.Search(ctx, "ALICE", 20)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice_dev", users[0].Username)

	// Match on tagline.
	users, err = repo.Search(ctx, "gopher", 20)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	// No match.
	users, err = repo.Search(ctx, "zzz", 20)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepository_Counts(t *testing.T) {
	db := setupTestDB(t)
	userRepo := NewUserRepository(db)
	postRepo := NewPostRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	post := seedPost(t, db, alice.ID, "Counted")
	seedPost(t, db, alice.ID, "Counted twice")

	_, err := postRepo.ToggleLike(ctx, post.ID, bob.ID)
	require.NoError(t, err)

	posts, err := userRepo.CountPostsByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 2, posts)

	likes, err := userRepo.SumPostLikesByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, likes)
}

func TestIsUniqueConstraintError(t *testing.T) {
	assert.False(t, IsUniqueConstraintError(nil))
	assert.False(t, IsUniqueConstraintError(errors.New("connection refused")))
	assert.True(t, IsUniqueConstraintError(errors.New(`duplicate key value violates unique constraint "idx_users_username" (SQLSTATE 23505)`)))
	assert.True(t, IsUniqueConstraintError(errors.New("UNIQUE constraint failed: users.username")))
}

package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"socialboard/internal/domain"
)

func TestPostRepository_CreateGetList(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")

	base := time.Now().UTC().Add(-time.Hour)
	first := &domain.Post{Content: "first", AuthorID: alice.ID, CreatedAt: base}
	second := &domain.Post{Content: "second", AuthorID: bob.ID, CreatedAt: base.Add(time.Minute)}
	_, err := repo.Create(ctx, first)
	require.NoError(t, err)
	_, err = repo.Create(ctx, second)
	require.NoError(t, err)

	got, err := repo.Get(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "first", got.Content)
	assert.Equal(t, alice.ID, got.AuthorID)
	require.NotNil(t, got.Author)
	assert.Equal(t, "alice", got.Author.Username)
	assert.Empty(t, got.Likes)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)

	mine, err := repo.ListByAuthor(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, first.ID, mine[0].ID)
}

func TestPostRepository_Likes(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	bob := createUser(t, db, "bob")
	post := &domain.Post{Content: "hello", AuthorID: alice.ID}
	_, err := repo.Create(ctx, post)
	require.NoError(t, err)

	require.NoError(t, repo.AddLike(ctx, post.ID, bob.ID))
	require.NoError(t, repo.AddLike(ctx, post.ID, bob.ID))
	require.NoError(t, repo.AddLike(ctx, post.ID, alice.ID))

	count, err := repo.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{bob.ID, alice.ID}, got.Likes)

	require.NoError(t, repo.RemoveLike(ctx, post.ID, bob.ID))
	got, err = repo.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{alice.ID}, got.Likes)
}

func TestPostRepository_DeleteCascadesLikes(t *testing.T) {
	db := newTestDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	alice := createUser(t, db, "alice")
	post := &domain.Post{Content: "bye", AuthorID: alice.ID}
	_, err := repo.Create(ctx, post)
	require.NoError(t, err)
	require.NoError(t, repo.AddLike(ctx, post.ID, alice.ID))

	require.NoError(t, repo.Delete(ctx, post.ID))
	_, err = repo.Get(ctx, post.ID)
	assert.ErrorIs(t, err, domain.ErrPostNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, post.ID), domain.ErrPostNotFound)

	count, err := repo.CountLikes(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

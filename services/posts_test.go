package services_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

func TestPublishingScenario(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	_, err := f.accounts.Register(ctx, services.RegisterInput{Username: "a", Email: "a@x.io", Password: "admin123"})
	require.NoError(t, err)
	token, err := f.accounts.Login(ctx, "a@x.io", "admin123")
	require.NoError(t, err)
	userID, err := f.tokens.ReadIdentity(token)
	require.NoError(t, err)
	caller := auth.Identity{UserID: userID, Role: models.RoleUser}

	post, err := f.posts.Create(ctx, caller, services.CreatePostInput{Title: "Hello World", Content: "First post"})
	require.NoError(t, err)
	assert.Equal(t, "hello-world", post.Slug)
	assert.False(t, post.Published)

	listed, err := f.posts.ListPublished(ctx)
	require.NoError(t, err)
	assert.Empty(t, listed)

	_, err = f.posts.Update(ctx, caller, post.ID, services.UpdatePostInput{Published: ptr(true)})
	require.NoError(t, err)

	listed, err = f.posts.ListPublished(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, post.ID, listed[0].ID)
	assert.Equal(t, int64(0), listed[0].Views)
	assert.Equal(t, "a", listed[0].AuthorName())

	fetched, err := f.posts.GetPublished(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fetched.Views)
}

func TestCreatePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "alice")

	t.Run("title and content required", func(t *testing.T) {
		_, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "T"})
		assert.True(t, errs.IsBadRequest(err))
		assert.Equal(t, "Title and content are required", err.Error())
	})

	t.Run("anonymous caller", func(t *testing.T) {
		_, err := f.posts.Create(ctx, auth.Identity{}, services.CreatePostInput{Title: "T", Content: "c"})
		assert.True(t, errs.IsUnauthorized(err))
	})

	post, err := f.posts.Create(ctx, alice, services.CreatePostInput{
		Title:   "Café Society",
		Content: "c",
		Tags:    []string{"go", " go ", "web", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, "cafe-society", post.Slug)
	assert.Equal(t, models.Tags{"go", "web"}, post.Tags())
	assert.Equal(t, alice.UserID, post.AuthorID)

	t.Run("derived slug collision", func(t *testing.T) {
		_, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "cafe society!", Content: "c"})
		assert.True(t, errs.IsConflict(err))
		assert.Equal(t, "Slug already exists, please choose a different one", err.Error())
	})

	t.Run("explicit slug", func(t *testing.T) {
		p, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "Café Society", Slug: "cafe-2", Content: "c"})
		require.NoError(t, err)
		assert.Equal(t, "cafe-2", p.Slug)
	})

	t.Run("title without slug characters", func(t *testing.T) {
		_, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "!!!", Content: "c"})
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("unknown category", func(t *testing.T) {
		_, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "Cats", Content: "c", CategoryID: ptr(uint(42))})
		assert.True(t, errs.IsBadRequest(err))
	})
}

func TestUpdatePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	root := f.registerAdmin(t, "root")

	category, err := f.categories.Create(ctx, root, services.CreateCategoryInput{Name: "Tech"})
	require.NoError(t, err)

	post, err := f.posts.Create(ctx, alice, services.CreatePostInput{
		Title:      "Original",
		Content:    "body",
		CategoryID: &category.ID,
		Tags:       []string{"a", "b"},
	})
	require.NoError(t, err)

	t.Run("non-author is forbidden", func(t *testing.T) {
		_, err := f.posts.Update(ctx, bob, post.ID, services.UpdatePostInput{Title: ptr("Hijacked")})
		assert.True(t, errs.IsForbidden(err))
		assert.Equal(t, "Unauthorized", err.Error())
	})

	t.Run("admin is not exempt", func(t *testing.T) {
		_, err := f.posts.Update(ctx, root, post.ID, services.UpdatePostInput{Title: ptr("Moderated")})
		assert.True(t, errs.IsForbidden(err))
	})

	t.Run("missing post", func(t *testing.T) {
		_, err := f.posts.Update(ctx, alice, 9999, services.UpdatePostInput{})
		assert.True(t, errs.IsNotFound(err))
	})

	t.Run("absent fields keep their values", func(t *testing.T) {
		updated, err := f.posts.Update(ctx, alice, post.ID, services.UpdatePostInput{Title: ptr("Renamed")})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, "original", updated.Slug, "slug is fixed at creation")

		stored, err := f.db.BlogPostRepo().FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, "body", stored.Content)
		assert.Equal(t, models.Tags{"a", "b"}, stored.Tags())
		require.NotNil(t, stored.CategoryID)
		assert.Equal(t, category.ID, *stored.CategoryID)
	})

	t.Run("patch decoded from json", func(t *testing.T) {
		var in services.UpdatePostInput
		require.NoError(t, json.Unmarshal([]byte(`{"tags":[],"category_id":null,"image_url":"https://img/x.png"}`), &in))

		_, err := f.posts.Update(ctx, alice, post.ID, in)
		require.NoError(t, err)

		stored, err := f.db.BlogPostRepo().FindByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Empty(t, stored.Tags())
		assert.Nil(t, stored.CategoryID)
		require.NotNil(t, stored.ImageURL)
		assert.Equal(t, "https://img/x.png", *stored.ImageURL)
		assert.Equal(t, "Renamed", stored.Title)
	})

	t.Run("blank title rejected", func(t *testing.T) {
		_, err := f.posts.Update(ctx, alice, post.ID, services.UpdatePostInput{Title: ptr("  ")})
		assert.True(t, errs.IsBadRequest(err))
	})

	t.Run("unknown category rejected", func(t *testing.T) {
		_, err := f.posts.Update(ctx, alice, post.ID, services.UpdatePostInput{CategoryID: services.SetTo(uint(777))})
		assert.True(t, errs.IsBadRequest(err))
	})
}

func TestDeletePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "alice")
	bob := f.register(t, "bob")
	root := f.registerAdmin(t, "root")

	first, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "First", Content: "c"})
	require.NoError(t, err)
	second, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "Second", Content: "c"})
	require.NoError(t, err)

	err = f.posts.Delete(ctx, bob, first.ID)
	assert.True(t, errs.IsForbidden(err))

	require.NoError(t, f.posts.Delete(ctx, root, first.ID), "admins may delete any post")
	require.NoError(t, f.posts.Delete(ctx, alice, second.ID))

	assert.True(t, errs.IsNotFound(f.posts.Delete(ctx, alice, second.ID)))
}

func TestGetPublished(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	alice := f.register(t, "alice")

	draft, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "Draft", Content: "c"})
	require.NoError(t, err)

	_, err = f.posts.GetPublished(ctx, draft.ID)
	assert.True(t, errs.IsNotFound(err))
	assert.Equal(t, "Blog not found", err.Error())

	_, err = f.posts.GetPublished(ctx, 9999)
	assert.True(t, errs.IsNotFound(err))

	live, err := f.posts.Create(ctx, alice, services.CreatePostInput{Title: "Live", Content: "c", Published: true})
	require.NoError(t, err)

	for want := int64(1); want <= 3; want++ {
		got, err := f.posts.GetPublished(ctx, live.ID)
		require.NoError(t, err)
		assert.Equal(t, want, got.Views)
	}

	t.Run("concurrent reads are all counted", func(t *testing.T) {
		const readers = 25
		var g errgroup.Group
		for i := 0; i < readers; i++ {
			g.Go(func() error {
				_, err := f.posts.GetPublished(ctx, live.ID)
				return err
			})
		}
		require.NoError(t, g.Wait())

		stored, err := f.db.BlogPostRepo().FindByID(ctx, live.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(3+readers), stored.Views)
	})
}

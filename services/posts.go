package services

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

const slugTakenMessage = "Slug already exists, please choose a different one"

type CreatePostInput struct {
	Title      string   `json:"title"`
	Content    string   `json:"content"`
	Slug       string   `json:"slug"`
	Published  bool     `json:"published"`
	CategoryID *uint    `json:"category_id"`
	Tags       []string `json:"tags"`
	ImageURL   *string  `json:"image_url"`
}

// UpdatePostInput is a partial update: only fields present in the request are
// applied. Present tags replace the whole set.
type UpdatePostInput struct {
	Title      *string         `json:"title"`
	Content    *string         `json:"content"`
	Published  *bool           `json:"published"`
	CategoryID Field[uint]     `json:"category_id"`
	Tags       Field[[]string] `json:"tags"`
	ImageURL   Field[string]   `json:"image_url"`
}

type PostService struct {
	posts      PostStore
	categories CategoryStore
	now        func() time.Time
	logger     zerolog.Logger
}

func NewPostService(posts PostStore, categories CategoryStore) *PostService {
	return &PostService{
		posts:      posts,
		categories: categories,
		now:        time.Now,
		logger:     log.With().Str("service", "posts").Logger(),
	}
}

func (s *PostService) Create(ctx context.Context, caller auth.Identity, in CreatePostInput) (*models.BlogPost, error) {
	if err := auth.CanCreatePost(caller); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, errs.NewBadRequestError("Title and content are required")
	}

	if err := checkLength("title", title, models.MaxTitleLength); err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(in.Slug)
	if slug == "" {
		slug = truncateSlug(Slugify(title))
	}
	if slug == "" {
		return nil, errs.NewBadRequestErrorWithField("Could not derive a slug from the title", "slug", "Provide a slug explicitly")
	}
	if err := checkLength("slug", slug, models.MaxSlugLength); err != nil {
		return nil, err
	}

	tags := models.NewTags(in.Tags...)
	if err := checkTags(tags); err != nil {
		return nil, err
	}
	if err := checkImageURL(in.ImageURL); err != nil {
		return nil, err
	}

	taken, err := s.posts.SlugExists(ctx, slug)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog post", err)
	}
	if taken {
		return nil, errs.NewConflictError(slugTakenMessage)
	}

	if err := s.checkCategory(ctx, in.CategoryID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	post := &models.BlogPost{
		Title:      title,
		Slug:       slug,
		Content:    in.Content,
		AuthorID:   caller.UserID,
		CategoryID: in.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
		Published:  in.Published,
		ImageURL:   in.ImageURL,
	}
	if err := s.posts.Add(ctx, post, tags); err != nil {
		if errs.IsUniqueConstraintViolationError(err) {
			return nil, errs.NewConflictError(slugTakenMessage)
		}
		return nil, errs.NewDatabaseError("create", "blog post", err)
	}

	s.logger.Info().Uint("postID", post.ID).Uint("authorID", caller.UserID).Str("slug", slug).Msg("Blog post created")
	return post, nil
}

// ListPublished returns published posts, newest first.
func (s *PostService) ListPublished(ctx context.Context) ([]*models.BlogPost, error) {
	posts, err := s.posts.FindPublished(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog posts", err)
	}
	return posts, nil
}

// GetPublished records a view of a published post and returns it. Missing and
// unpublished posts are both NotFound.
func (s *PostService) GetPublished(ctx context.Context, id uint) (*models.BlogPost, error) {
	post, err := s.posts.IncrementViews(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("update", "blog post", err)
	}
	if post == nil {
		return nil, errs.NewNotFoundError("Blog not found")
	}
	return post, nil
}

func (s *PostService) Update(ctx context.Context, caller auth.Identity, id uint, in UpdatePostInput) (*models.BlogPost, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.CanUpdatePost(caller, post); err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, errs.NewInvalidFieldError("title", "cannot be empty")
		}
		if err := checkLength("title", title, models.MaxTitleLength); err != nil {
			return nil, err
		}
		post.Title = title
	}
	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, errs.NewInvalidFieldError("content", "cannot be empty")
		}
		post.Content = *in.Content
	}
	if in.Published != nil {
		post.Published = *in.Published
	}
	if in.CategoryID.Set {
		categoryID := in.CategoryID.Ptr()
		if err := s.checkCategory(ctx, categoryID); err != nil {
			return nil, err
		}
		post.CategoryID = categoryID
	}
	if in.ImageURL.Set {
		if err := checkImageURL(in.ImageURL.Ptr()); err != nil {
			return nil, err
		}
		post.ImageURL = in.ImageURL.Ptr()
	}

	var tags models.Tags
	if in.Tags.Set {
		tags = models.NewTags(in.Tags.Value...)
		if err := checkTags(tags); err != nil {
			return nil, err
		}
	}

	post.UpdatedAt = s.now().UTC()
	if err := s.posts.Update(ctx, post, tags); err != nil {
		return nil, errs.NewDatabaseError("update", "blog post", err)
	}
	if tags != nil {
		post.TagRows = models.TagRows(post.ID, tags)
	}

	s.logger.Info().Uint("postID", post.ID).Uint("userID", caller.UserID).Msg("Blog post updated")
	return post, nil
}

// Delete removes a post. The author or an admin may delete.
func (s *PostService) Delete(ctx context.Context, caller auth.Identity, id uint) error {
	post, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CanDeletePost(caller, post); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return errs.NewDatabaseError("delete", "blog post", err)
	}

	s.logger.Info().Uint("postID", post.ID).Uint("userID", caller.UserID).Bool("asAdmin", post.AuthorID != caller.UserID).Msg("Blog post deleted")
	return nil
}

func (s *PostService) find(ctx context.Context, id uint) (*models.BlogPost, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("find", "blog post", err)
	}
	if post == nil {
		return nil, errs.NewNotFoundError("Blog not found")
	}
	return post, nil
}

func (s *PostService) checkCategory(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	category, err := s.categories.FindByID(ctx, *id)
	if err != nil {
		return errs.NewDatabaseError("find", "category", err)
	}
	if category == nil {
		return errs.NewBadRequestErrorWithField("Category not found", "category_id", "")
	}
	return nil
}

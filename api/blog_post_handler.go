package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/services"
)

// multipartOverhead leaves room for form boundaries and headers around an image.
const multipartOverhead = 64 << 10

type blogPostHandler struct {
	responder Responder
	logger    zerolog.Logger
	posts     *services.PostService
	images    *services.ImageService
}

func newBlogPostHandler(posts *services.PostService, images *services.ImageService) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder: NewResponder(logger),
		logger:    logger,
		posts:     posts,
		images:    images,
	}
}

// getAllBlogPosts lists published blog posts, newest first
// @Summary Get all blog posts
// @Tags Blog Posts
// @Produce json
// @Success 200 {array} BlogPostResponse
// @Failure 500 {object} ErrorResponse
// @Router /blogs/all [get]
func (h blogPostHandler) getAllBlogPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPosts, err := h.posts.ListPublished(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		response := make([]BlogPostResponse, 0, len(blogPosts))
		for _, blogPost := range blogPosts {
			response = append(response, newBlogPostResponse(blogPost))
		}

		h.responder.WriteJSON(w, response)
	}
}

// getBlogPost returns a published post and counts the view
// @Summary Get blog post
// @Tags Blog Posts
// @Produce json
// @Param blogPostID path int true "Blog Post ID"
// @Success 200 {object} BlogPostResponse
// @Failure 400 {object} ErrorResponse "Bad Request - Invalid blogPostID"
// @Failure 404 {object} ErrorResponse "Blog not found"
// @Router /blogs/{blogPostID} [get]
func (h blogPostHandler) getBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPostID, err := parseID(chi.URLParam(r, "blogPostID"), "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blogPost, err := h.posts.GetPublished(r.Context(), blogPostID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSON(w, newBlogPostResponse(blogPost))
	}
}

// createBlogPost creates a post owned by the caller
// @Summary Create blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blogPost body services.CreatePostInput true "Blog post data"
// @Success 201 {object} createBlogPostResponse
// @Failure 400 {object} ErrorResponse "Title and content are required"
// @Failure 409 {object} ErrorResponse "Slug already exists"
// @Router /blogs/create [post]
func (h blogPostHandler) createBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.CreatePostInput
		if err := decodeJSON(w, r, "blog post", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		blogPost, err := h.posts.Create(r.Context(), ctxGetIdentity(r.Context()), in)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, createBlogPostResponse{
			Message: "Blog post created successfully",
			Blog: BlogPostSummary{
				ID:    blogPost.ID,
				Title: blogPost.Title,
				Slug:  blogPost.Slug,
			},
		})
	}
}

// updateBlogPost applies a partial update. Only the author may update.
// @Summary Update blog post
// @Tags Blog Posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param blogPostID path int true "Blog Post ID"
// @Param blogPost body services.UpdatePostInput true "Fields to change"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Blog not found"
// @Router /blogs/update/{blogPostID} [put]
func (h blogPostHandler) updateBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPostID, err := parseID(chi.URLParam(r, "blogPostID"), "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.UpdatePostInput
		if err := decodeJSON(w, r, "blog post", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.posts.Update(r.Context(), ctxGetIdentity(r.Context()), blogPostID, in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "Blog post updated successfully")
	}
}

// deleteBlogPost removes a post. The author or an admin may delete.
// @Summary Delete blog post
// @Tags Blog Posts
// @Produce json
// @Security BearerAuth
// @Param blogPostID path int true "Blog Post ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Blog not found"
// @Router /blogs/delete/{blogPostID} [delete]
func (h blogPostHandler) deleteBlogPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		blogPostID, err := parseID(chi.URLParam(r, "blogPostID"), "blogPostID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.posts.Delete(r.Context(), ctxGetIdentity(r.Context()), blogPostID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "Blog post deleted successfully")
	}
}

// uploadImage stores the multipart "image" field and returns its URL
// @Summary Upload blog image
// @Tags Blog Posts
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Image file"
// @Success 201 {object} uploadImageResponse
// @Failure 413 {object} ErrorResponse
// @Failure 415 {object} ErrorResponse
// @Router /blogs/upload-image [post]
func (h blogPostHandler) uploadImage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, services.MaxImageBytes+multipartOverhead)

		file, _, err := r.FormFile("image")
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				h.responder.WriteError(w, errs.NewMaxBodySizeExceededError(services.MaxImageBytes))
				return
			}
			h.responder.WriteError(w, errs.NewMissingRequiredFieldError("image"))
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, services.MaxImageBytes+1))
		if err != nil {
			h.responder.WriteError(w, errs.NewMalformedPayloadError("image", err))
			return
		}

		url, err := h.images.Upload(r.Context(), ctxGetIdentity(r.Context()), data)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteJSONStatus(w, http.StatusCreated, uploadImageResponse{ImageURL: url})
	}
}

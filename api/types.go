package api

import (
	"time"

	"github.com/rpupo63/blog-backend/models"
)

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler     authHandler
	blogPostHandler blogPostHandler
	categoryHandler categoryHandler
	healthHandler   healthHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Blog not found"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
}

// MessageResponse is the body of mutations that only acknowledge success.
type MessageResponse struct {
	Message string `json:"message"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// BlogPostSummary identifies a freshly created post.
type BlogPostSummary struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
}

type createBlogPostResponse struct {
	Message string          `json:"message"`
	Blog    BlogPostSummary `json:"blog"`
}

// BlogPostResponse is the public view of a published post.
type BlogPostResponse struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	CreatedAt  time.Time `json:"created_at"`
	Views      int64     `json:"views"`
	Tags       []string  `json:"tags"`
	CategoryID *uint     `json:"category_id"`
	ImageURL   *string   `json:"image_url"`
}

func newBlogPostResponse(p *models.BlogPost) BlogPostResponse {
	return BlogPostResponse{
		ID:         p.ID,
		Title:      p.Title,
		Slug:       p.Slug,
		Content:    p.Content,
		Author:     p.AuthorName(),
		CreatedAt:  p.CreatedAt,
		Views:      p.Views,
		Tags:       p.Tags().Strings(),
		CategoryID: p.CategoryID,
		ImageURL:   p.ImageURL,
	}
}

type uploadImageResponse struct {
	ImageURL string `json:"image_url"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

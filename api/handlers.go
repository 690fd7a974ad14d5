package api

import (
	"time"

	"github.com/rpupo63/blog-backend/config"
)

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(deps Dependencies, settings config.Settings, startupTime time.Time) *routeHandlers {
	return &routeHandlers{
		authHandler:     newAuthHandler(deps.Accounts, settings.ResetLinkBaseURL, settings.APIPrefix),
		blogPostHandler: newBlogPostHandler(deps.Posts, deps.Images),
		categoryHandler: newCategoryHandler(deps.Categories),
		healthHandler:   newHealthHandler(deps.Database, startupTime),
	}
}

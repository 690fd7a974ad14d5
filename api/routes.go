package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the public and authenticated routes under prefix.
func setupRoutes(r chi.Router, prefix string, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Get("/health", handlers.healthHandler.getHealth())

	if prefix == "" {
		mountAPI(r, handlers, authMiddleware)
		return
	}
	r.Route(prefix, func(r chi.Router) {
		mountAPI(r, handlers, authMiddleware)
	})
}

func mountAPI(r chi.Router, handlers *routeHandlers, authMiddleware authMiddleware) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", handlers.authHandler.register())
		r.Post("/login", handlers.authHandler.login())
		r.Post("/forgot-password", handlers.authHandler.forgotPassword())
		r.Post("/reset-password", handlers.authHandler.resetPassword())
	})

	r.Route("/blogs", func(r chi.Router) {
		r.Get("/all", handlers.blogPostHandler.getAllBlogPosts())
		r.Get("/{blogPostID}", handlers.blogPostHandler.getBlogPost())

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/create", handlers.blogPostHandler.createBlogPost())
			r.Put("/update/{blogPostID}", handlers.blogPostHandler.updateBlogPost())
			r.Delete("/delete/{blogPostID}", handlers.blogPostHandler.deleteBlogPost())
			if handlers.blogPostHandler.images != nil {
				r.Post("/upload-image", handlers.blogPostHandler.uploadImage())
			}
		})
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", handlers.categoryHandler.getAllCategories())

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.authenticate)

			r.Post("/create", handlers.categoryHandler.createCategory())
			r.Put("/{categoryID}", handlers.categoryHandler.updateCategory())
			r.Delete("/{categoryID}", handlers.categoryHandler.deleteCategory())
		})
	})
}

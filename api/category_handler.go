package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

type categoryHandler struct {
	responder  Responder
	logger     zerolog.Logger
	categories *services.CategoryService
}

func newCategoryHandler(categories *services.CategoryService) categoryHandler {
	logger := log.With().Str("handlerName", "categoryHandler").Logger()

	return categoryHandler{
		responder:  NewResponder(logger),
		logger:     logger,
		categories: categories,
	}
}

// getAllCategories lists every category
// @Summary Get all categories
// @Tags Categories
// @Produce json
// @Success 200 {array} models.Category
// @Router /categories/ [get]
func (h categoryHandler) getAllCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := h.categories.List(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if categories == nil {
			categories = []*models.Category{}
		}

		h.responder.WriteJSON(w, categories)
	}
}

// createCategory creates a category (admin only)
// @Summary Create category
// @Tags Categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body services.CreateCategoryInput true "Category data"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} ErrorResponse "Category name is required"
// @Failure 403 {object} ErrorResponse "Unauthorized"
// @Router /categories/create [post]
func (h categoryHandler) createCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in services.CreateCategoryInput
		if err := decodeJSON(w, r, "category", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.categories.Create(r.Context(), ctxGetIdentity(r.Context()), in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMessage(w, http.StatusCreated, "Category created successfully")
	}
}

func (h categoryHandler) updateCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := parseID(chi.URLParam(r, "categoryID"), "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var in services.UpdateCategoryInput
		if err := decodeJSON(w, r, "category", &in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if _, err := h.categories.Update(r.Context(), ctxGetIdentity(r.Context()), categoryID, in); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "Category updated successfully")
	}
}

func (h categoryHandler) deleteCategory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categoryID, err := parseID(chi.URLParam(r, "categoryID"), "categoryID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		if err := h.categories.Delete(r.Context(), ctxGetIdentity(r.Context()), categoryID); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.responder.WriteMessage(w, http.StatusOK, "Category deleted successfully")
	}
}

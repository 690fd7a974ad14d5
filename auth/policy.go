package auth

import (
	"github.com/rpupo63/blog-backend/errs"
	"github.com/rpupo63/blog-backend/models"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	UserID uint
	Role   string
}

func IdentityOf(u *models.User) Identity {
	if u == nil {
		return Identity{}
	}
	return Identity{UserID: u.ID, Role: u.RoleName()}
}

func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

func (i Identity) Authenticated() bool {
	return i.UserID != 0
}

// CanCreatePost allows any authenticated user.
func CanCreatePost(id Identity) error {
	if !id.Authenticated() {
		return errs.Unauthorized
	}
	return nil
}

// CanUpdatePost allows only the post's author. Admins are not exempt.
func CanUpdatePost(id Identity, post *models.BlogPost) error {
	if !id.Authenticated() {
		return errs.Unauthorized
	}
	if post.AuthorID != id.UserID {
		return errs.NewForbiddenError("Unauthorized")
	}
	return nil
}

// CanDeletePost allows the post's author or an admin.
func CanDeletePost(id Identity, post *models.BlogPost) error {
	if !id.Authenticated() {
		return errs.Unauthorized
	}
	if post.AuthorID != id.UserID && !id.IsAdmin() {
		return errs.NewForbiddenError("Unauthorized")
	}
	return nil
}

func CanManageCategories(id Identity) error {
	if !id.Authenticated() {
		return errs.Unauthorized
	}
	if !id.IsAdmin() {
		return errs.NewInsufficientRoleError(models.RoleAdmin)
	}
	return nil
}

package services

import (
	"github.com/dmitrijs2005/miniblog/internal/common"
	"github.com/dmitrijs2005/miniblog/internal/server/auth"
	"github.com/dmitrijs2005/miniblog/internal/server/models"
)

// Guard decides whether a session may modify an article.
//
// An article with a recorded owner may only be changed by that owner. An
// article without an owner may be changed by any signed-in user unless
// StrictOwnership is set.
type Guard struct {
	StrictOwnership bool
}

// Authorize returns nil when claims may modify a, ErrorUnauthorized when
// there is no session and ErrorForbidden otherwise.
func (g Guard) Authorize(claims *auth.Claims, a *models.Article) error {
	if claims == nil {
		return common.NewError(common.ErrorUnauthorized, "Unauthorized")
	}
	if a.OwnerID == nil {
		if g.StrictOwnership {
			return common.NewError(common.ErrorForbidden, "Forbidden")
		}
		return nil
	}
	if *a.OwnerID != claims.UserID() {
		return common.NewError(common.ErrorForbidden, "Forbidden")
	}
	return nil
}

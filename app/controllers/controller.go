// Package controllers maps HTTP requests onto the service layer. Controllers
// stay thin: decode/validate input, resolve the principal, call a service,
// translate its error into a status code.
package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/models"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/logger"
	"github.com/shashiranjanraj/kirana/pkg/middleware"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

// principal reconstructs the acting user from the verified token claims.
// Routes behind middleware.Auth always have claims; the zero User (ID 0)
// only ever reaches services from unauthenticated routes, which don't call
// principal-gated operations.
func principal(r *http.Request) models.User {
	claims, ok := middleware.ClaimsFromCtx(r.Context())
	if !ok {
		return models.User{}
	}

	user := models.User{Role: claims.Role}
	user.ID = claims.UserID
	return user
}

// idParam parses the {id} route parameter.
func idParam(r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// queryInt parses an integer query parameter, falling back when the
// parameter is absent or not a number.
func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}

// respondServiceError translates a service error into an HTTP response.
// Validation and invalid-state failures are both client errors (400) on
// this API; see the order endpoints' contract.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *services.ValidationError

	switch {
	case errors.As(err, &ve):
		response.Error(w, http.StatusBadRequest, ve.Message)
	case errors.Is(err, services.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		response.NotFound(w)
	case errors.Is(err, services.ErrForbidden):
		response.Forbidden(w)
	case errors.Is(err, services.ErrInvalidState):
		response.Error(w, http.StatusBadRequest, "operation not allowed in the current order status")
	case errors.Is(err, services.ErrCategoryInUse):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		response.Unauthorized(w)
	default:
		logger.WithCtx(r.Context()).Error("internal error", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal Server Error")
	}
}

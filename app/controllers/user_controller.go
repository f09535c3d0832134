package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/resources"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

type UserController struct {
	service *services.AuthService
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{service: services.NewAuthService(db)}
}

// Me returns the authenticated user's own account.
func (c *UserController) Me(w http.ResponseWriter, r *http.Request) {
	user, err := c.service.Me(principal(r))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	response.Success(w, resources.User(user))
}

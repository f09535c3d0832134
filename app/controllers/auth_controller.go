package controllers

import (
	"net/http"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/kirana/app/resources"
	"github.com/shashiranjanraj/kirana/app/services"
	"github.com/shashiranjanraj/kirana/pkg/bind"
	"github.com/shashiranjanraj/kirana/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{service: services.NewAuthService(db)}
}

func (c *AuthController) Register(w http.ResponseWriter, r *http.Request) {
	var in services.RegisterInput
	if !bindJSON(w, r, &in) {
		return
	}

	user, tokens, err := c.service.Register(in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	response.Created(w, resources.Map{
		"user":   resources.User(user),
		"tokens": tokens,
	})
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var in services.LoginInput
	if !bindJSON(w, r, &in) {
		return
	}

	user, tokens, err := c.service.Login(in)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	response.Success(w, resources.Map{
		"user":   resources.User(user),
		"tokens": tokens,
	})
}

// bindJSON decodes and validates a JSON body, writing the error response
// itself on failure.
func bindJSON(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	errs, err := bind.JSON(r, dest)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return false
	}
	if len(errs) > 0 {
		response.ValidationError(w, errs)
		return false
	}
	return true
}

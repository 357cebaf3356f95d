package controllers

import (
	"net/http"

	"github.com/fastapi1403/building-management/internal/dtos"
	"github.com/fastapi1403/building-management/internal/middleware"
	"github.com/fastapi1403/building-management/internal/utils"
)

const csrfTokenBytes = 32

type CSRFController struct {
	secureCookie bool
}

// NewCSRFController sets the Secure attribute on the cookie when secureCookie is true.
func NewCSRFController(secureCookie bool) *CSRFController {
	return &CSRFController{secureCookie: secureCookie}
}

// GET /api/v1/csrf-token
func (c *CSRFController) TokenHandler(w http.ResponseWriter, r *http.Request) {
	token, err := utils.RandomToken(csrfTokenBytes)
	if err != nil {
		utils.RespondErrorWithCode(w, http.StatusInternalServerError, utils.ErrCodeInternal, "Could not issue CSRF token", nil, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.CSRFCookieName,
		Value:    token,
		Path:     "/",
		Secure:   c.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	utils.RespondWithJSON(w, http.StatusOK, dtos.CSRFTokenResponse{CSRFToken: token})
}

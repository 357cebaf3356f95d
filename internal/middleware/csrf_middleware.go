package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/fastapi1403/building-management/internal/utils"
)

const (
	CSRFCookieName = "csrftoken"
	CSRFHeaderName = "X-CSRFToken"
)

// CSRFMiddleware rejects state-changing requests whose X-CSRFToken header
// does not match the csrftoken cookie (double-submit).
func CSRFMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}

		header := r.Header.Get(CSRFHeaderName)
		cookie, err := r.Cookie(CSRFCookieName)
		if err != nil || header == "" || cookie.Value == "" ||
			subtle.ConstantTimeCompare([]byte(header), []byte(cookie.Value)) != 1 {
			utils.RespondErrorWithCode(w, http.StatusForbidden, utils.ErrCodeCSRFFailed, "CSRF token missing or invalid", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

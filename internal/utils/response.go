package utils

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

const (
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeValidation         = "validation_error"
	ErrCodeUnauthorized       = "unauthorized"
	ErrCodeTokenExpired       = "token_expired"
	ErrCodeCSRFFailed         = "csrf_failed"
	ErrCodeInternal           = "internal_server_error"
	ErrCodeNotFound           = "not_found"
	ErrCodeConflict           = "conflict"
	ErrCodeRowVersionConflict = "row_version_conflict"
	ErrCodeTransient          = "transient_error"
)

// ErrorResponse is the body of every non-2xx reply. Reason and Field are
// machine readable; Details carries extra context such as blocking children.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Reason  string `json:"reason,omitempty"`
	Field   string `json:"field,omitempty"`
	Details any    `json:"details,omitempty"`
}

// RespondErrorWithCode builds a JSON error response with a standard
// code and message. The optional `details` is included if non-nil.
func RespondErrorWithCode(
	w http.ResponseWriter,
	status int,
	errorCode string,
	publicMessage string,
	details any,
	devErrs ...error,
) {
	body := ErrorResponse{
		Code:    errorCode,
		Message: publicMessage,
		Details: details,
	}
	var devErr error
	if len(devErrs) > 0 {
		devErr = devErrs[0]
	}
	RespondError(w, status, body, devErr)
}

// RespondError writes body and logs devErr. devErr never reaches the client.
func RespondError(w http.ResponseWriter, status int, body ErrorResponse, devErr error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)

	fields := logrus.Fields{"status": status}
	if devErr != nil {
		fields["error"] = devErr.Error()
	}
	entry := Logger.WithFields(fields)
	if status >= http.StatusInternalServerError {
		entry.Error(body.Message)
	} else {
		entry.Warn(body.Message)
	}
}

// RespondWithJSON for successful cases
func RespondWithJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

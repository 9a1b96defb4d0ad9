package response

import (
	"encoding/json"
	"net/http"

	appErrors "github.com/unclebandit/campaign-broadcaster/internal/errors"
)

type errorBody struct {
	Message string `json:"message"`
}

func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, errorBody{Message: msg})
}

// AppError writes err using its mapped status and user-facing message.
func AppError(w http.ResponseWriter, err error) {
	Error(w, appErrors.HTTPStatus(err), appErrors.Message(err))
}

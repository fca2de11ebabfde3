package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/nikhil/taskflow/internal/apperr"
	"github.com/nikhil/taskflow/internal/logger"
	"github.com/nikhil/taskflow/internal/middleware"
	"github.com/nikhil/taskflow/internal/service/auth"
)

// ErrorResponse is the body written for every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func respondWithError(w http.ResponseWriter, log *logger.Logger, err error) {
	code := apperr.CodeOf(err)
	status := apperr.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "code", code, "error", err)
	}
	respondWithJSON(w, log, status, ErrorResponse{Error: apperr.MessageOf(err), Code: string(code)})
}

func respondWithJSON(w http.ResponseWriter, log *logger.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error("Error marshaling JSON", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperr.Wrap(apperr.CodeValidation, "invalid request body", err)
	}
	return nil
}

func currentUser(r *http.Request) (auth.Identity, error) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		return auth.Identity{}, apperr.New(apperr.CodeUnauthorized, "invalid token")
	}
	return id, nil
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(mux.Vars(r)[name], 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.New(apperr.CodeValidation, "invalid "+name)
	}
	return id, nil
}

// requestContext bounds the store calls made for one request.
func requestContext(r *http.Request, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), timeout)
}

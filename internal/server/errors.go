package server

import (
	"net/http"

	apperrors "github.com/flocklens/flocklens/internal/errors"
)

// HandleError is the central handler for all errors.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

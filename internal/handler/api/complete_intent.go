package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/coursemedia/uploads-ms-go/internal/api_context"
	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/usecase/upload"
)

func CompleteIntentHandler(svc port.IntentCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, ok := api_context.IntentIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "intent ID is required", nil)
			return
		}

		if err := svc.CompleteIntent(r.Context(), intentID); err != nil {
			switch {
			case errors.Is(err, upload.ErrIntentNotFound):
				WriteError(w, http.StatusNotFound, "Upload intent not found", nil)
			case errors.Is(err, upload.ErrIntentExpired):
				WriteError(w, http.StatusGone, "Upload intent has expired", nil)
			case errors.Is(err, upload.ErrInvalidFile):
				WriteError(w, http.StatusBadRequest, "Uploaded object does not match the declaration", err)
			default:
				WriteError(w, http.StatusInternalServerError, "Could not complete upload intent", err)
			}
			return
		}

		w.WriteHeader(http.StatusNoContent)
		log.Printf("✅  Successfully completed upload intent #%s", intentID)
	}
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/coursemedia/uploads-ms-go/internal/api_context"
	"github.com/coursemedia/uploads-ms-go/internal/logger"
	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/usecase/upload"
	"github.com/coursemedia/uploads-ms-go/internal/validation"
)

type CreateIntentRequest struct {
	Filename  string `json:"filename" validate:"required,max=255"`
	SizeBytes int64  `json:"size_bytes" validate:"required,gt=0"`
	MimeType  string `json:"mime_type" validate:"required"`
}

func CreateIntentHandler(svc port.IntentCreator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := api_context.OwnerIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusUnauthorized, "owner identity is required", nil)
			return
		}

		var req CreateIntentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}

		if errs := validation.ValidateStruct(req); errs != nil {
			errsJSON, err := validation.ErrorsToJson(errs)
			if err != nil {
				WriteError(w, http.StatusInternalServerError, "Validation error (could not encode details)", fmt.Errorf("encoding validation errors: %w", err))
				return
			}

			// return the validation errors payload directly
			RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
			logger.Warnf(r.Context(), "❌  Validation failed: %s", errsJSON)
			return
		}

		in := port.CreateIntentInput{
			OwnerID:  ownerID,
			Filename: req.Filename,
			Size:     req.SizeBytes,
			MimeType: req.MimeType,
		}
		out, err := svc.CreateIntent(r.Context(), in)
		if err != nil {
			switch {
			case errors.Is(err, upload.ErrInvalidFile):
				WriteError(w, http.StatusBadRequest, "File is not accepted", err)
			case errors.Is(err, upload.ErrRateLimited):
				WriteError(w, http.StatusTooManyRequests, "Too many upload requests, slow down", nil)
			default:
				WriteError(w, http.StatusInternalServerError, "Could not create upload intent", err)
			}
			return
		}

		RespondJSON(w, http.StatusCreated, out)
		logger.Infof(r.Context(), "✅  Successfully created %s upload intent #%s", out.Mode, out.IntentID)
	}
}

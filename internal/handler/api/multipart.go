package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/coursemedia/uploads-ms-go/internal/api_context"
	"github.com/coursemedia/uploads-ms-go/internal/model"
	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/usecase/upload"
	"github.com/coursemedia/uploads-ms-go/internal/validation"
)

type InitMultipartRequest struct {
	SizeBytes int64 `json:"size_bytes" validate:"required,gt=0"`
}

func InitMultipartHandler(svc port.MultipartInitialiser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, ok := api_context.IntentIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "intent ID is required", nil)
			return
		}

		var req InitMultipartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			respondValidationErrors(w, r, errs)
			return
		}

		out, err := svc.InitMultipart(r.Context(), port.InitMultipartInput{IntentID: intentID, Size: req.SizeBytes})
		if err != nil {
			writeMultipartError(w, err, "Could not open multipart session")
			return
		}

		RespondJSON(w, http.StatusCreated, out)
		log.Printf("✅  Successfully opened multipart session for intent #%s (%d parts)", intentID, out.TotalParts)
	}
}

type SignPartRequest struct {
	UploadID   string `json:"upload_id" validate:"required"`
	PartNumber int    `json:"part_number" validate:"required,gt=0"`
}

func SignPartHandler(svc port.PartSigner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, ok := api_context.IntentIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "intent ID is required", nil)
			return
		}

		var req SignPartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			respondValidationErrors(w, r, errs)
			return
		}

		in := port.SignPartInput{IntentID: intentID, UploadID: req.UploadID, PartNumber: req.PartNumber}
		out, err := svc.SignPart(r.Context(), in)
		if err != nil {
			writeMultipartError(w, err, "Could not sign part URL")
			return
		}

		RespondJSON(w, http.StatusOK, out)
		log.Printf("✅  Successfully signed part %d of intent #%s", req.PartNumber, intentID)
	}
}

type CompletedPartRequest struct {
	PartNumber int    `json:"part_number" validate:"required,gt=0"`
	ETag       string `json:"etag" validate:"required"`
}

type CompleteMultipartRequest struct {
	UploadID string                 `json:"upload_id" validate:"required"`
	Parts    []CompletedPartRequest `json:"parts" validate:"required,min=1,dive"`
}

func CompleteMultipartHandler(svc port.MultipartCompleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, ok := api_context.IntentIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "intent ID is required", nil)
			return
		}

		var req CompleteMultipartRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid request", fmt.Errorf("invalid JSON: %w", err))
			return
		}
		if errs := validation.ValidateStruct(req); errs != nil {
			respondValidationErrors(w, r, errs)
			return
		}

		parts := make([]model.CompletedPart, 0, len(req.Parts))
		for _, p := range req.Parts {
			parts = append(parts, model.CompletedPart{PartNumber: p.PartNumber, ETag: p.ETag})
		}

		in := port.CompleteMultipartInput{IntentID: intentID, UploadID: req.UploadID, Parts: parts}
		out, err := svc.CompleteMultipart(r.Context(), in)
		if err != nil {
			writeMultipartError(w, err, "Could not complete multipart upload")
			return
		}

		RespondJSON(w, http.StatusOK, out)
		log.Printf("✅  Successfully assembled multipart upload for intent #%s", intentID)
	}
}

func AbortMultipartHandler(svc port.MultipartAborter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		intentID, ok := api_context.IntentIDFromContext(r.Context())
		if !ok {
			WriteError(w, http.StatusBadRequest, "intent ID is required", nil)
			return
		}

		if err := svc.AbortMultipart(r.Context(), intentID); err != nil {
			writeMultipartError(w, err, "Could not abort multipart upload")
			return
		}

		w.WriteHeader(http.StatusNoContent)
		log.Printf("✅  Successfully aborted multipart upload for intent #%s", intentID)
	}
}

func respondValidationErrors(w http.ResponseWriter, r *http.Request, errs error) {
	errsJSON, err := validation.ErrorsToJson(errs)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "failed to encode validation errors", err)
		return
	}
	RespondRawJSON(w, http.StatusBadRequest, []byte(errsJSON))
	log.Printf("❌  Validation failed: %s", errsJSON)
}

// writeMultipartError maps the upload error taxonomy onto HTTP statuses
// shared by all multipart endpoints.
func writeMultipartError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, upload.ErrIntentNotFound):
		WriteError(w, http.StatusNotFound, "Upload intent not found", nil)
	case errors.Is(err, upload.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "No open multipart session for this intent", nil)
	case errors.Is(err, upload.ErrIntentExpired):
		WriteError(w, http.StatusGone, "Upload intent has expired", nil)
	case errors.Is(err, upload.ErrInvalidPart):
		WriteError(w, http.StatusBadRequest, "Part does not belong to this upload", err)
	case errors.Is(err, upload.ErrIncompletePartSet):
		WriteError(w, http.StatusBadRequest, "Part set is incomplete or inconsistent", err)
	case errors.Is(err, upload.ErrInvalidFile):
		WriteError(w, http.StatusBadRequest, "File is not accepted", err)
	default:
		WriteError(w, http.StatusInternalServerError, fallback, err)
	}
}

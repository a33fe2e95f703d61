package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/coursemedia/uploads-ms-go/internal/port"
	"github.com/coursemedia/uploads-ms-go/internal/usecase/webhook"
)

// WebhookHandler receives transcoding-status callbacks from the media
// provider. Only three outcomes exist on the wire: 401 for a signature the
// secret does not explain, 200 for anything the reconciler acknowledged
// (including duplicates and events it chose to ignore), 500 when our side
// failed and the provider should redeliver.
func WebhookHandler(svc port.WebhookProcessor) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(r.Body)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, "could not read webhook payload", err)
			return
		}

		sig := r.Header.Get(webhook.SignatureHeader)
		if err := svc.HandleEvent(r.Context(), payload, sig); err != nil {
			if errors.Is(err, webhook.ErrInvalidSignature) {
				WriteError(w, http.StatusUnauthorized, "invalid webhook signature", nil)
				return
			}
			WriteError(w, http.StatusInternalServerError, "could not process webhook event", err)
			return
		}

		w.WriteHeader(http.StatusOK)
		log.Printf("✅  Webhook event acknowledged")
	}
}

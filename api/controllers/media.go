package controllers

import (
	"net/http"
	"time"

	"github.com/vastralane/storefront-backend/api/responses"
	"github.com/vastralane/storefront-backend/api/validators"
	mediasvc "github.com/vastralane/storefront-backend/internal/media"
	"github.com/vastralane/storefront-backend/pkg/logger"
)

// MediaUpload stores a base64-encoded product image.
func MediaUpload(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload mediasvc.UploadInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dto, err := svc.UploadImage(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, dto)
	}
}

// MediaDelete removes a stored product image.
func MediaDelete(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fileID := validators.QueryString(r, "file_id")
		if err := svc.DeleteImage(r.Context(), fileID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// MediaAuthParams issues short-lived credentials for client-side uploads.
func MediaAuthParams(svc mediasvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := svc.AuthParams(time.Now())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, params)
	}
}

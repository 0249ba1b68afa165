package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
)

const welcomeMessage = "Welcome to the storefront API"

// Welcome answers the public smoke-test endpoint.
func Welcome(now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{
			"message":   welcomeMessage,
			"timestamp": now().UTC().Format(time.RFC3339),
		})
	}
}

package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/BTC001B/store/internal/cart"
	"github.com/BTC001B/store/internal/catalog"
	"github.com/BTC001B/store/internal/inventory"
	"github.com/BTC001B/store/internal/order"
	"github.com/BTC001B/store/internal/returns"
)

// respondWithError sends the UI-facing error shape: {"error": message}.
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrOrderItemNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, returns.ErrReturnNotFound),
		errors.Is(err, cart.ErrLineNotFound):
		return http.StatusNotFound
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrCannotCancel),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, inventory.ErrOutOfStock),
		errors.Is(err, returns.ErrNotOrderOwner),
		errors.Is(err, returns.ErrItemNotInOrder),
		errors.Is(err, returns.ErrAlreadyOpen),
		errors.Is(err, returns.ErrInvalidStatus):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// formatValidationErrors flattens validator output into one message for the
// {"error": string} contract.
func formatValidationErrors(errs validator.ValidationErrors) string {
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field())
	}
	return "Invalid or missing fields: " + strings.Join(fields, ", ")
}

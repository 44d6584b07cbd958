package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BTC001B/store/internal/order"
	"github.com/BTC001B/store/internal/returns"
)

type CreateReturnRequest struct {
	OrderID     string `json:"orderId" validate:"required,uuid"`
	UserID      string `json:"userId" validate:"required,uuid"`
	OrderItemID string `json:"orderItemId" validate:"required,uuid"`
	Reason      string `json:"reason"`
}

type UpdateReturnStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type ReturnHandler struct {
	svc      returns.Service
	validate *validator.Validate
}

func NewReturnHandler(svc returns.Service) *ReturnHandler {
	return &ReturnHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func (h *ReturnHandler) CreateReturn(w http.ResponseWriter, r *http.Request) {
	var req CreateReturnRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	orderID, _ := uuid.FromString(req.OrderID)
	userID, _ := uuid.FromString(req.UserID)
	orderItemID, _ := uuid.FromString(req.OrderItemID)

	ret, item, err := h.svc.CreateReturn(r.Context(), orderID, userID, orderItemID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, order.ErrOrderItemNotFound):
			respondWithError(w, http.StatusNotFound, "Order item not found")
		case errors.Is(err, returns.ErrNotOrderOwner):
			respondWithError(w, http.StatusBadRequest, "Order does not belong to this user")
		case errors.Is(err, returns.ErrItemNotInOrder):
			respondWithError(w, http.StatusBadRequest, "Order item does not belong to this order")
		case errors.Is(err, returns.ErrAlreadyOpen):
			respondWithError(w, http.StatusBadRequest, "A return for this item already exists")
		default:
			log.Error().Err(err).Msg("Failed to create return")
			respondWithError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Return request created successfully",
		"return":  ret,
		"item":    item,
	})
}

// ListReturns keeps the original surface: the path id is not a filter, the
// optional userId query parameter is.
func (h *ReturnHandler) ListReturns(w http.ResponseWriter, r *http.Request) {
	var userID *uuid.UUID
	if raw := r.URL.Query().Get("userId"); raw != "" {
		parsed, err := uuid.FromString(raw)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid user id")
			return
		}
		userID = &parsed
	}

	result, err := h.svc.ListReturns(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch returns")
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *ReturnHandler) ListAllReturns(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.ListReturns(r.Context(), nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch returns")
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"data": result})
}

func (h *ReturnHandler) UpdateReturnStatus(w http.ResponseWriter, r *http.Request) {
	returnID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid return id")
		return
	}

	var req UpdateReturnStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	ret, err := h.svc.UpdateReturnStatus(r.Context(), returnID, returns.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, returns.ErrReturnNotFound):
			respondWithError(w, http.StatusNotFound, "Return request not found")
		case errors.Is(err, returns.ErrInvalidStatus):
			respondWithError(w, http.StatusBadRequest, "Unknown return status")
		default:
			log.Error().Err(err).Stringer("return_id", returnID).Msg("Failed to update return status")
			respondWithError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"message": "Return status updated",
		"return":  ret,
	})
}

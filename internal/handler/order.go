package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/BTC001B/store/internal/catalog"
	"github.com/BTC001B/store/internal/inventory"
	"github.com/BTC001B/store/internal/order"
)

type CheckoutRequest struct {
	UserID          string `json:"userId" validate:"required,uuid"`
	PaymentMethod   string `json:"paymentMethod" validate:"required"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
}

type BuyNowRequest struct {
	UserID          string `json:"userId" validate:"required,uuid"`
	ProductID       string `json:"productId" validate:"required,uuid"`
	Quantity        int    `json:"quantity" validate:"required,gt=0"`
	PaymentMethod   string `json:"paymentMethod" validate:"required"`
	ShippingAddress string `json:"shippingAddress" validate:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// OrderHandler exposes the order lifecycle over HTTP.
type OrderHandler struct {
	svc      order.Service
	validate *validator.Validate
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{
		svc:      svc,
		validate: validator.New(),
	}
}

func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, payload any) bool {
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(payload); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(payload); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithError(w, http.StatusBadRequest, formatValidationErrors(validationErrors))
		} else {
			log.Error().Err(err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Server error")
		}
		return false
	}

	return true
}

// Checkout converts the caller's cart into an order.
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	userID, _ := uuid.FromString(req.UserID)

	o, err := h.svc.Checkout(r.Context(), userID, req.PaymentMethod, req.ShippingAddress)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), checkoutErrorMessage(err))
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Order placed successfully",
		"orderId": o.ID,
	})
}

// BuyNow places a single-product order bypassing the cart.
func (h *OrderHandler) BuyNow(w http.ResponseWriter, r *http.Request) {
	var req BuyNowRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	userID, _ := uuid.FromString(req.UserID)
	productID, _ := uuid.FromString(req.ProductID)

	o, err := h.svc.BuyNow(r.Context(), userID, productID, req.Quantity, req.PaymentMethod, req.ShippingAddress)
	if err != nil {
		respondWithError(w, mapErrorToStatusCode(err), checkoutErrorMessage(err))
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]any{
		"message": "Order placed successfully (Buy Now)",
		"orderId": o.ID,
	})
}

func (h *OrderHandler) GetUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.FromString(chi.URLParam(r, "userId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid user id")
		return
	}

	orders, err := h.svc.GetOrdersByUserID(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Stringer("user_id", userID).Msg("Failed to fetch user orders")
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	o, err := h.svc.GetOrderByID(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondWithError(w, http.StatusNotFound, "Order not found")
			return
		}
		log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to fetch order")
		respondWithError(w, http.StatusInternalServerError, "Server error")
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	var req UpdateOrderStatusRequest
	if !decodeAndValidate(w, r, h.validate, &req) {
		return
	}

	err = h.svc.UpdateOrderStatus(r.Context(), orderID, order.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, order.ErrInvalidStatus):
			respondWithError(w, http.StatusBadRequest, "Unknown order status")
		default:
			log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to update order status")
			respondWithError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Order status updated",
		"status":  req.Status,
	})
}

func (h *OrderHandler) CancelOrder(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "orderId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid order id")
		return
	}

	err = h.svc.CancelOrder(r.Context(), orderID)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrOrderNotFound):
			respondWithError(w, http.StatusNotFound, "Order not found")
		case errors.Is(err, order.ErrCannotCancel):
			respondWithError(w, http.StatusBadRequest, "Order cannot be cancelled")
		default:
			log.Error().Err(err).Stringer("order_id", orderID).Msg("Failed to cancel order")
			respondWithError(w, http.StatusInternalServerError, "Server error")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"message": "Order cancelled successfully",
	})
}

func (h *OrderHandler) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.GetAllOrders(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to fetch orders")
		respondWithError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{"orders": orders})
}

func checkoutErrorMessage(err error) string {
	switch {
	case errors.Is(err, order.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, catalog.ErrProductNotFound):
		return "Product not found"
	case errors.Is(err, inventory.ErrOutOfStock):
		return "Not enough stock available"
	default:
		return "Server error"
	}
}

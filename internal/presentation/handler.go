package presentation

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/tonmoys423/teashop/internal/application"
	"github.com/tonmoys423/teashop/internal/domain"
	"github.com/tonmoys423/teashop/internal/logger"
	"github.com/tonmoys423/teashop/internal/presentation/helpers"
	"github.com/tonmoys423/teashop/internal/sslcommerz"
)

type Handler struct {
	orders      *application.OrdersService
	products    *application.ProductsService
	payments    *application.PaymentsService
	frontendURL string
}

func NewHandler(orders *application.OrdersService, products *application.ProductsService, payments *application.PaymentsService, frontendURL string) *Handler {
	return &Handler{
		orders:      orders,
		products:    products,
		payments:    payments,
		frontendURL: frontendURL,
	}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/", h.Root)

		r.Get("/products", h.ListProducts)
		r.Get("/products/category/{category}", h.ListProductsByCategory)
		r.Get("/products/{id}", h.GetProduct)

		r.Post("/orders", h.CreateOrder)
		r.Get("/orders/{id}", h.GetOrder)

		r.Post("/payments/initiate", h.InitiatePayment)
		r.Post("/payments/success", h.paymentCallback(application.OutcomeSuccess, "success"))
		r.Post("/payments/fail", h.paymentCallback(application.OutcomeFail, "failed"))
		r.Post("/payments/cancel", h.paymentCallback(application.OutcomeCancel, "cancelled"))
		r.Post("/payments/ipn", h.PaymentIPN)
		r.Get("/payments/status/{transactionID}", h.GetPaymentStatus)
	})
}

func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"message": "Welcome to Tea Shop API"})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		helpers.HttpError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	helpers.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, application.ErrProductNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "Product not found")
			return
		}
		helpers.HttpError(w, http.StatusInternalServerError, "failed to get product")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) ListProductsByCategory(w http.ResponseWriter, r *http.Request) {
	category := domain.TeaCategory(chi.URLParam(r, "category"))
	products, err := h.products.ListByCategory(r.Context(), category)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCategory) {
			helpers.HttpError(w, http.StatusBadRequest, "invalid tea category")
			return
		}
		helpers.HttpError(w, http.StatusInternalServerError, "failed to list products")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	helpers.WriteJSON(w, http.StatusOK, products)
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var ord domain.Order
	if err := helpers.DecodeJSON(r.Body, &ord); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	if err := h.orders.CreateOrder(r.Context(), &ord); err != nil {
		helpers.HttpError(w, http.StatusInternalServerError, "failed to create order")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ord)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ord, err := h.orders.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, application.ErrOrderNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "Order not found")
			return
		}
		helpers.HttpError(w, http.StatusInternalServerError, "failed to get order")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, ord)
}

func (h *Handler) InitiatePayment(w http.ResponseWriter, r *http.Request) {
	var ord domain.Order
	if err := helpers.DecodeJSON(r.Body, &ord); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}

	res, err := h.payments.InitiatePayment(r.Context(), &ord, callbackURLs(r))
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmptyOrder), errors.Is(err, application.ErrInvalidAmount):
			helpers.HttpError(w, http.StatusBadRequest, err.Error())
		default:
			var gwErr *application.GatewayError
			if errors.As(err, &gwErr) {
				helpers.HttpError(w, http.StatusBadRequest, gwErr.Reason)
				return
			}
			helpers.HttpError(w, http.StatusInternalServerError, "Payment initiation failed")
		}
		return
	}

	helpers.WriteJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"transaction_id": res.TransactionID,
		"gateway_url":    res.GatewayURL,
		"session_key":    res.SessionKey,
	})
}

// paymentCallback builds one of the three browser-facing outcome endpoints.
// The hard contract here is a redirect on every code path: the user-agent
// lands on the storefront no matter what happened inside.
func (h *Handler) paymentCallback(outcome application.PaymentOutcome, page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			logger.Error("payment callback form parse failed", "outcome", outcome, "err", err)
			helpers.Redirect(w, r, h.frontendURL+"/payment/error")
			return
		}
		tranID := r.PostFormValue("tran_id")
		logger.Info("payment callback received", "outcome", outcome, "tran_id", tranID)

		if err := h.payments.ApplyOutcome(r.Context(), tranID, outcome); err != nil {
			logger.Error("payment callback handling failed", "outcome", outcome, "tran_id", tranID, "err", err)
			helpers.Redirect(w, r, h.frontendURL+"/payment/error")
			return
		}

		helpers.Redirect(w, r, h.frontendURL+"/payment/"+page+"?transaction_id="+url.QueryEscape(tranID))
	}
}

// PaymentIPN is the server-to-server notification endpoint. The gateway
// reports the outcome in the "status" field; whatever happens it gets a 200
// back so it stops retrying.
func (h *Handler) PaymentIPN(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}
	tranID := r.PostFormValue("tran_id")
	status := r.PostFormValue("status")

	var outcome application.PaymentOutcome
	switch status {
	case "VALID", "VALIDATED":
		outcome = application.OutcomeSuccess
	case "FAILED":
		outcome = application.OutcomeFail
	case "CANCELLED":
		outcome = application.OutcomeCancel
	default:
		logger.Warn("ipn with unrecognized status", "tran_id", tranID, "status", status)
		helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		return
	}

	if err := h.payments.ApplyOutcome(r.Context(), tranID, outcome); err != nil {
		logger.Error("ipn handling failed", "tran_id", tranID, "err", err)
	}
	helpers.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetPaymentStatus(w http.ResponseWriter, r *http.Request) {
	info, err := h.payments.GetStatus(r.Context(), chi.URLParam(r, "transactionID"))
	if err != nil {
		if errors.Is(err, application.ErrTransactionNotFound) {
			helpers.HttpError(w, http.StatusNotFound, "Transaction not found")
			return
		}
		helpers.HttpError(w, http.StatusInternalServerError, "Status retrieval failed")
		return
	}
	helpers.WriteJSON(w, http.StatusOK, info)
}

// callbackURLs derives the four gateway callbacks from the inbound request's
// own base address, like the original deployment did.
func callbackURLs(r *http.Request) sslcommerz.CallbackURLs {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	base := scheme + "://" + r.Host + "/api/payments"

	return sslcommerz.CallbackURLs{
		Success: base + "/success",
		Fail:    base + "/fail",
		Cancel:  base + "/cancel",
		IPN:     base + "/ipn",
	}
}

package application

import (
	"context"
	"fmt"
	"time"

	"github.com/tonmoys423/teashop/internal/domain"
	"github.com/tonmoys423/teashop/internal/logger"
	"github.com/tonmoys423/teashop/internal/repository"
	"github.com/tonmoys423/teashop/internal/sslcommerz"
)

const Currency = "BDT"

// PaymentGateway is what the orchestrator needs from the sslcommerz client.
type PaymentGateway interface {
	CreateSession(ctx context.Context, order *domain.Order, urls sslcommerz.CallbackURLs) sslcommerz.SessionResult
}

// PaymentEvent is published to the broker whenever a gateway outcome is
// applied to an order.
type PaymentEvent struct {
	TransactionID string               `json:"transaction_id"`
	OrderID       string               `json:"order_id"`
	Amount        float64              `json:"amount"`
	PaymentStatus domain.PaymentStatus `json:"payment_status"`
	OrderStatus   domain.OrderStatus   `json:"order_status"`
	EventType     string               `json:"event_type"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

type Publisher interface {
	PublishPaymentEvent(ctx context.Context, ev PaymentEvent) error
}

// PaymentOutcome names the three callback entry points.
type PaymentOutcome string

const (
	OutcomeSuccess PaymentOutcome = "success"
	OutcomeFail    PaymentOutcome = "fail"
	OutcomeCancel  PaymentOutcome = "cancel"
)

type InitiateResult struct {
	TransactionID string `json:"transaction_id"`
	GatewayURL    string `json:"gateway_url"`
	SessionKey    string `json:"session_key"`
}

type StatusInfo struct {
	TransactionID string               `json:"transaction_id"`
	Status        domain.PaymentStatus `json:"status"`
	Amount        float64              `json:"amount"`
	Currency      string               `json:"currency"`
}

type PaymentsService struct {
	repo    repository.OrderRepo
	gateway PaymentGateway
	pub     Publisher
}

// NewPaymentsService wires the orchestrator. pub may be nil when no broker
// is configured.
func NewPaymentsService(repo repository.OrderRepo, gateway PaymentGateway, pub Publisher) *PaymentsService {
	return &PaymentsService{repo: repo, gateway: gateway, pub: pub}
}

// InitiatePayment persists the order first, then asks the gateway for a
// session and attaches the transaction id. Persisting before the gateway
// call guarantees the order exists before any callback can reference it; a
// gateway failure leaves the order behind with a NULL transaction_id, which
// is how abandoned checkouts are recognized.
func (s *PaymentsService) InitiatePayment(ctx context.Context, order *domain.Order, urls sslcommerz.CallbackURLs) (*InitiateResult, error) {
	normalizeOrder(order)

	if len(order.Items) == 0 {
		return nil, ErrEmptyOrder
	}
	if order.TotalAmount <= 0 {
		return nil, ErrInvalidAmount
	}

	if err := s.repo.Insert(ctx, order); err != nil {
		logger.Error("persist order before payment failed", "order_id", order.ID, "err", err)
		return nil, err
	}

	res := s.gateway.CreateSession(ctx, order, urls)
	if !res.Success {
		logger.Error("payment session creation failed", "order_id", order.ID, "reason", res.Error)
		return nil, &GatewayError{Reason: res.Error}
	}

	if err := s.repo.SetTransactionID(ctx, order.ID, res.TransactionID); err != nil {
		logger.Error("attach transaction id failed", "order_id", order.ID, "tran_id", res.TransactionID, "err", err)
		return nil, err
	}
	order.TransactionID = res.TransactionID

	logger.Info("payment session created", "order_id", order.ID, "tran_id", res.TransactionID)
	return &InitiateResult{
		TransactionID: res.TransactionID,
		GatewayURL:    res.GatewayURL,
		SessionKey:    res.SessionKey,
	}, nil
}

// ApplyOutcome transitions the order matching tranID per the outcome table.
// A pure overwrite: re-delivery sets the same fields to the same values,
// and an unknown transaction id matches nothing and is absorbed.
func (s *PaymentsService) ApplyOutcome(ctx context.Context, tranID string, outcome PaymentOutcome) error {
	var ps domain.PaymentStatus
	var st domain.OrderStatus
	switch outcome {
	case OutcomeSuccess:
		ps, st = domain.PaymentStatusCompleted, domain.OrderStatusConfirmed
	case OutcomeFail:
		ps, st = domain.PaymentStatusFailed, domain.OrderStatusCancelled
	case OutcomeCancel:
		ps, st = domain.PaymentStatusCancelled, domain.OrderStatusCancelled
	default:
		return fmt.Errorf("unknown payment outcome %q", outcome)
	}

	matched, err := s.repo.SetPaymentOutcome(ctx, tranID, ps, st)
	if err != nil {
		logger.Error("apply payment outcome failed", "tran_id", tranID, "outcome", outcome, "err", err)
		return err
	}
	if !matched {
		// the gateway can notify before SetTransactionID commits, or for a
		// transaction we never issued; either way we absorb it
		logger.Warn("callback for unknown transaction", "tran_id", tranID, "outcome", outcome)
		return nil
	}

	logger.Info("payment outcome applied", "tran_id", tranID, "payment_status", ps, "status", st)
	s.publishOutcome(ctx, tranID, ps, st)
	return nil
}

func (s *PaymentsService) publishOutcome(ctx context.Context, tranID string, ps domain.PaymentStatus, st domain.OrderStatus) {
	if s.pub == nil {
		return
	}
	o, err := s.repo.GetByTransactionID(ctx, tranID)
	if err != nil || o == nil {
		logger.Warn("skip payment event, order lookup failed", "tran_id", tranID, "err", err)
		return
	}
	ev := PaymentEvent{
		TransactionID: tranID,
		OrderID:       o.ID,
		Amount:        o.TotalAmount,
		PaymentStatus: ps,
		OrderStatus:   st,
		EventType:     "payment_" + string(ps),
		OccurredAt:    time.Now().UTC(),
	}
	if err := s.pub.PublishPaymentEvent(ctx, ev); err != nil {
		logger.Warn("publish payment event failed", "tran_id", tranID, "err", err)
	}
}

func (s *PaymentsService) GetStatus(ctx context.Context, tranID string) (*StatusInfo, error) {
	o, err := s.repo.GetByTransactionID(ctx, tranID)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrTransactionNotFound
	}
	return &StatusInfo{
		TransactionID: tranID,
		Status:        o.PaymentStatus,
		Amount:        o.TotalAmount,
		Currency:      Currency,
	}, nil
}

package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tonmoys423/teashop/internal/domain"
	"github.com/tonmoys423/teashop/internal/logger"
	"github.com/tonmoys423/teashop/internal/repository"
)

const defaultShippingCost = 50.0

type OrdersService struct {
	repo repository.OrderRepo
}

func NewOrdersService(r repository.OrderRepo) *OrdersService {
	return &OrdersService{repo: r}
}

func (s *OrdersService) CreateOrder(ctx context.Context, order *domain.Order) error {
	normalizeOrder(order)
	if err := s.repo.Insert(ctx, order); err != nil {
		logger.Warn("create order failed", "order_id", order.ID, "err", err)
		return err
	}
	return nil
}

func (s *OrdersService) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	o, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

// normalizeOrder fills in everything the server owns: identity, timestamps
// and the initial lifecycle states. Client-supplied values for these fields
// are kept when present so the order-creation path stays usable on its own.
func normalizeOrder(o *domain.Order) {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now().UTC()
	}
	if o.Status == "" {
		o.Status = domain.OrderStatusPending
	}
	if o.PaymentStatus == "" {
		o.PaymentStatus = domain.PaymentStatusPending
	}
	if o.ShippingCost == 0 {
		o.ShippingCost = defaultShippingCost
	}
	if o.Customer.Country == "" {
		o.Customer.Country = "Bangladesh"
	}
}

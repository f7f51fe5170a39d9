package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tonmoys423/teashop/internal/domain"
	"github.com/tonmoys423/teashop/internal/logger"
)

type OrderRepo interface {
	Insert(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id string) (*domain.Order, error)
	GetByTransactionID(ctx context.Context, tranID string) (*domain.Order, error)
	SetTransactionID(ctx context.Context, orderID, tranID string) error
	SetPaymentOutcome(ctx context.Context, tranID string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) (bool, error)
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

func (r *OrderRepository) Insert(ctx context.Context, o *domain.Order) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO teashop.orders
			(id, customer_name, customer_email, customer_phone,
			 address_line1, address_line2, city, postal_code, country,
			 subtotal, shipping_cost, total_amount, status, payment_status, created_at)
		 VALUES
			($1, $2, $3, $4,
			 $5, $6, $7, $8, $9,
			 $10, $11, $12, $13, $14, $15)`,
		o.ID,
		o.Customer.Name,
		o.Customer.Email,
		o.Customer.Phone,
		o.Customer.AddressLine1,
		o.Customer.AddressLine2,
		o.Customer.City,
		o.Customer.PostalCode,
		o.Customer.Country,
		o.Subtotal,
		o.ShippingCost,
		o.TotalAmount,
		o.Status,
		o.PaymentStatus,
		o.CreatedAt,
	)
	if err != nil {
		logger.Warn("insert order failed", "order_id", o.ID, "err", err)
		return err
	}

	// items are many-to-one; batch like the rest of our inserts
	if len(o.Items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(
				`INSERT INTO teashop.order_items
					(order_id, product_id, product_title, quantity, unit_price, total_price)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				o.ID,
				it.ProductID,
				it.ProductTitle,
				it.Quantity,
				it.UnitPrice,
				it.TotalPrice,
			)
		}
		br := tx.SendBatch(ctx, batch)
		if err = br.Close(); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return err
	}
	tx = nil
	return nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	return r.getOne(ctx, `WHERE id = $1`, id)
}

func (r *OrderRepository) GetByTransactionID(ctx context.Context, tranID string) (*domain.Order, error) {
	return r.getOne(ctx, `WHERE transaction_id = $1`, tranID)
}

func (r *OrderRepository) getOne(ctx context.Context, where string, arg any) (*domain.Order, error) {
	var o domain.Order
	var tranID *string

	err := r.pool.QueryRow(ctx,
		`SELECT id, customer_name, customer_email, customer_phone,
				address_line1, address_line2, city, postal_code, country,
				subtotal, shipping_cost, total_amount, status, payment_status,
				transaction_id, created_at
		   FROM teashop.orders `+where,
		arg,
	).Scan(
		&o.ID,
		&o.Customer.Name,
		&o.Customer.Email,
		&o.Customer.Phone,
		&o.Customer.AddressLine1,
		&o.Customer.AddressLine2,
		&o.Customer.City,
		&o.Customer.PostalCode,
		&o.Customer.Country,
		&o.Subtotal,
		&o.ShippingCost,
		&o.TotalAmount,
		&o.Status,
		&o.PaymentStatus,
		&tranID,
		&o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if tranID != nil {
		o.TransactionID = *tranID
	}

	rows, err := r.pool.Query(ctx,
		`SELECT product_id, product_title, quantity, unit_price, total_price
		   FROM teashop.order_items
		  WHERE order_id = $1
		  ORDER BY id`,
		o.ID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var it domain.OrderItem
		if err := rows.Scan(&it.ProductID, &it.ProductTitle, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &o, nil
}

func (r *OrderRepository) SetTransactionID(ctx context.Context, orderID, tranID string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE teashop.orders SET transaction_id = $2 WHERE id = $1`,
		orderID, tranID,
	)
	return err
}

// SetPaymentOutcome is a targeted single-row overwrite keyed by transaction
// id. Zero rows matched is not an error: callbacks for unknown transaction
// ids are absorbed (the gateway retries on non-2xx).
func (r *OrderRepository) SetPaymentOutcome(ctx context.Context, tranID string, paymentStatus domain.PaymentStatus, status domain.OrderStatus) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		`UPDATE teashop.orders SET payment_status = $2, status = $3 WHERE transaction_id = $1`,
		tranID, paymentStatus, status,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

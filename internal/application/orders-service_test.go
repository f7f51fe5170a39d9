package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tonmoys423/teashop/internal/domain"
)

func TestCreateOrder_AssignsServerOwnedFields(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrdersService(repo)

	order := validOrder()
	order.ShippingCost = 0
	order.Customer.Country = ""

	require.NoError(t, svc.CreateOrder(context.Background(), order))

	assert.NotEmpty(t, order.ID)
	assert.False(t, order.CreatedAt.IsZero())
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, domain.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, 50.0, order.ShippingCost)
	assert.Equal(t, "Bangladesh", order.Customer.Country)

	stored, err := repo.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Empty(t, stored.TransactionID)
}

func TestGetByID_NotFound(t *testing.T) {
	svc := NewOrdersService(newFakeOrderRepo())

	_, err := svc.GetByID(context.Background(), "missing")
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestCreateOrder_KeepsClientSuppliedIdentity(t *testing.T) {
	repo := newFakeOrderRepo()
	svc := NewOrdersService(repo)

	order := validOrder()
	order.ID = "client-chosen-id"

	require.NoError(t, svc.CreateOrder(context.Background(), order))
	assert.Equal(t, "client-chosen-id", order.ID)
}

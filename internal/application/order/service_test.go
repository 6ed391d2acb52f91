package order

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"order_backend/internal/domain/customer"
	domain "order_backend/internal/domain/order"
	"order_backend/internal/domain/product"
	"order_backend/internal/infrastructure/persistence/memory"
	"order_backend/pkg/logger"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(ctx context.Context, e domain.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

const (
	customerID = int64(1)
	productP   = int64(10)
	productQ   = int64(20)
)

func newFixture(t *testing.T, strict bool) (*Service, *memory.Store, *MockPublisher) {
	t.Helper()
	store := memory.NewStore()
	store.PutCustomer(customer.Customer{ID: customerID, Handle: "ana", Name: "Ana"})
	store.PutProduct(product.Product{ID: productP, Name: "P", Price: decimal.RequireFromString("5.00"), Stock: 10})
	collaborator := int64(3)
	store.PutProduct(product.Product{ID: productQ, Name: "Q", Price: decimal.RequireFromString("2.50"), Stock: 2, CollaboratorID: &collaborator})

	pub := new(MockPublisher)
	svc := NewService(store, pub, logger.NewNop(), Options{StrictStatus: strict})
	return svc, store, pub
}

func stockOf(t *testing.T, store *memory.Store, id int64) int {
	t.Helper()
	p, err := store.Repositories().Inventory.GetProduct(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, p)
	return p.Stock
}

func countOrders(t *testing.T, store *memory.Store) int {
	t.Helper()
	orders, err := store.Repositories().Orders.List(context.Background(), 0, 1000)
	require.NoError(t, err)
	return len(orders)
}

func TestService_CreateCancelScenario(t *testing.T) {
	svc, store, pub := newFixture(t, true)
	ctx := context.Background()
	pub.On("PublishOrderEvent", ctx, mock.Anything).Return(nil)

	o, err := svc.CreateOrder(ctx, CreateOrderCommand{
		CustomerID:    customerID,
		PaymentMethod: "cash",
		Items:         []CreateOrderItem{{ProductID: productP, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("15.00").Equal(o.TotalAmount))
	assert.Equal(t, domain.StatusPendingPayment, o.Status)
	assert.Equal(t, 7, stockOf(t, store, productP))

	cancelled, err := svc.UpdateStatus(ctx, o.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, cancelled.Status)
	assert.Equal(t, 10, stockOf(t, store, productP))

	again, err := svc.UpdateStatus(ctx, o.ID, "CANCELLED")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, again.Status)
	assert.Equal(t, 10, stockOf(t, store, productP))

	pub.AssertNumberOfCalls(t, "PublishOrderEvent", 3)
}

func TestService_CreateOrder_SnapshotsAndTotal(t *testing.T) {
	svc, store, pub := newFixture(t, true)
	ctx := context.Background()
	pub.On("PublishOrderEvent", ctx, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventOrderCreated
	})).Return(nil).Once()

	notes := "gift wrap"
	o, err := svc.CreateOrder(ctx, CreateOrderCommand{
		CustomerID:    customerID,
		PaymentMethod: "card",
		Items: []CreateOrderItem{
			{ProductID: productP, Quantity: 2},
			{ProductID: productQ, Notes: &notes},
		},
	})
	require.NoError(t, err)

	require.Len(t, o.Lines, 2)
	assert.Equal(t, 1, o.Lines[1].Quantity, "missing quantity defaults to 1")
	assert.Equal(t, &notes, o.Lines[1].CustomizationNotes)
	require.NotNil(t, o.Lines[1].CollaboratorID)
	assert.Equal(t, int64(3), *o.Lines[1].CollaboratorID)
	assert.True(t, o.LinesTotal().Equal(o.TotalAmount))
	assert.True(t, decimal.RequireFromString("12.50").Equal(o.TotalAmount))
	assert.Equal(t, 8, stockOf(t, store, productP))
	assert.Equal(t, 1, stockOf(t, store, productQ))

	// Later price changes do not touch the stored order.
	store.PutProduct(product.Product{ID: productP, Price: decimal.NewFromInt(99), Stock: 8})
	stored, err := svc.GetOrder(ctx, o.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("5.00").Equal(stored.Lines[0].UnitPrice))
	pub.AssertExpectations(t)
}

func TestService_CreateOrder_FailuresWriteNothing(t *testing.T) {
	tests := []struct {
		name    string
		cmd     CreateOrderCommand
		wantErr error
	}{
		{
			name:    "unknown customer",
			cmd:     CreateOrderCommand{CustomerID: 99, PaymentMethod: "cash", Items: []CreateOrderItem{{ProductID: productP, Quantity: 1}}},
			wantErr: domain.ErrCustomerNotFound,
		},
		{
			name: "unknown product after a valid one",
			cmd: CreateOrderCommand{CustomerID: customerID, PaymentMethod: "cash", Items: []CreateOrderItem{
				{ProductID: productP, Quantity: 1},
				{ProductID: 404, Quantity: 1},
			}},
			wantErr: domain.ErrProductNotFound,
		},
		{
			name:    "stock 2 requested 5",
			cmd:     CreateOrderCommand{CustomerID: customerID, PaymentMethod: "cash", Items: []CreateOrderItem{{ProductID: productQ, Quantity: 5}}},
			wantErr: domain.ErrInsufficientStock,
		},
		{
			name: "second line short",
			cmd: CreateOrderCommand{CustomerID: customerID, PaymentMethod: "cash", Items: []CreateOrderItem{
				{ProductID: productP, Quantity: 4},
				{ProductID: productQ, Quantity: 3},
			}},
			wantErr: domain.ErrInsufficientStock,
		},
		{
			name: "repeated product exceeds stock together",
			cmd: CreateOrderCommand{CustomerID: customerID, PaymentMethod: "cash", Items: []CreateOrderItem{
				{ProductID: productQ, Quantity: 2},
				{ProductID: productQ, Quantity: 1},
			}},
			wantErr: domain.ErrInsufficientStock,
		},
		{
			name:    "no items",
			cmd:     CreateOrderCommand{CustomerID: customerID, PaymentMethod: "cash"},
			wantErr: domain.ErrNoItems,
		},
		{
			name:    "negative quantity",
			cmd:     CreateOrderCommand{CustomerID: customerID, PaymentMethod: "cash", Items: []CreateOrderItem{{ProductID: productP, Quantity: -1}}},
			wantErr: domain.ErrInvalidQuantity,
		},
		{
			name:    "missing payment method",
			cmd:     CreateOrderCommand{CustomerID: customerID, Items: []CreateOrderItem{{ProductID: productP, Quantity: 1}}},
			wantErr: domain.ErrMissingField,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, store, pub := newFixture(t, true)

			o, err := svc.CreateOrder(context.Background(), tt.cmd)
			assert.Nil(t, o)
			assert.ErrorIs(t, err, tt.wantErr)

			assert.Equal(t, 0, countOrders(t, store))
			assert.Equal(t, 10, stockOf(t, store, productP))
			assert.Equal(t, 2, stockOf(t, store, productQ))
			pub.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
		})
	}
}

func TestService_CreateOrder_StockErrorNamesTheLine(t *testing.T) {
	svc, _, _ := newFixture(t, true)

	_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
		CustomerID:    customerID,
		PaymentMethod: "cash",
		Items:         []CreateOrderItem{{ProductID: productQ, Quantity: 5}},
	})

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, productQ, stockErr.ProductID)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)
}

func TestService_CreateOrder_PublishFailureDoesNotFail(t *testing.T) {
	svc, store, pub := newFixture(t, true)
	ctx := context.Background()
	pub.On("PublishOrderEvent", ctx, mock.Anything).Return(errors.New("broker down"))

	o, err := svc.CreateOrder(ctx, CreateOrderCommand{
		CustomerID:    customerID,
		PaymentMethod: "cash",
		Items:         []CreateOrderItem{{ProductID: productP, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.NotZero(t, o.ID)
	assert.Equal(t, 9, stockOf(t, store, productP))
}

func TestService_CreateOrder_ConcurrentBuyersNeverOversell(t *testing.T) {
	store := memory.NewStore()
	store.PutCustomer(customer.Customer{ID: customerID, Handle: "ana"})
	store.PutProduct(product.Product{ID: productP, Price: decimal.NewFromInt(1), Stock: 5})
	svc := NewService(store, nil, nil, Options{StrictStatus: true})

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), CreateOrderCommand{
				CustomerID:    customerID,
				PaymentMethod: "cash",
				Items:         []CreateOrderItem{{ProductID: productP, Quantity: 1}},
			})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, succeeded)
	assert.Equal(t, 0, stockOf(t, store, productP))
	assert.Equal(t, 5, countOrders(t, store))
}

func TestService_ConcurrentCancelsRestoreOnce(t *testing.T) {
	svc, store, _ := newFixture(t, true)
	svc.publisher = nil
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, CreateOrderCommand{
		CustomerID:    customerID,
		PaymentMethod: "cash",
		Items:         []CreateOrderItem{{ProductID: productP, Quantity: 4}},
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.UpdateStatus(ctx, o.ID, "cancelado")
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, stockOf(t, store, productP))
}

func TestService_GetOrder_NotFound(t *testing.T) {
	svc, _, _ := newFixture(t, true)

	o, err := svc.GetOrder(context.Background(), 42)
	assert.Nil(t, o)
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_ListOrders_CreationOrder(t *testing.T) {
	svc, _, _ := newFixture(t, true)
	svc.publisher = nil
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		o, err := svc.CreateOrder(ctx, CreateOrderCommand{
			CustomerID:    customerID,
			PaymentMethod: "cash",
			Items:         []CreateOrderItem{{ProductID: productP, Quantity: 1}},
		})
		require.NoError(t, err)
		ids = append(ids, o.ID)
	}

	page, err := svc.ListOrders(ctx, 0, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, ids[0], page[0].ID)
	assert.Equal(t, ids[1], page[1].ID)
	assert.Len(t, page[0].Lines, 1)

	empty, err := svc.ListOrders(ctx, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestService_UpdateStatus(t *testing.T) {
	svc, store, pub := newFixture(t, true)
	ctx := context.Background()
	pub.On("PublishOrderEvent", ctx, mock.Anything).Return(nil)

	o, err := svc.CreateOrder(ctx, CreateOrderCommand{
		CustomerID:    customerID,
		PaymentMethod: "cash",
		Items:         []CreateOrderItem{{ProductID: productP, Quantity: 2}},
	})
	require.NoError(t, err)

	lower, err := svc.UpdateStatus(ctx, o.ID, "pagado")
	require.NoError(t, err)
	upper, err := svc.UpdateStatus(ctx, o.ID, "PAGADO")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, lower.Status)
	assert.Equal(t, lower.Status, upper.Status)
	assert.Equal(t, 8, stockOf(t, store, productP), "non-cancel transitions keep stock")

	_, err = svc.UpdateStatus(ctx, o.ID, "refunded")
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = svc.UpdateStatus(ctx, 999, "paid")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	pub.AssertCalled(t, "PublishOrderEvent", ctx, mock.MatchedBy(func(e domain.Event) bool {
		return e.Type == domain.EventOrderStatusChanged &&
			e.PreviousStatus == domain.StatusPendingPayment &&
			e.Status == domain.StatusPaid &&
			!e.StockRestored
	}))
}

func TestService_UpdateStatus_Permissive(t *testing.T) {
	svc, store, _ := newFixture(t, false)
	svc.publisher = nil
	ctx := context.Background()

	o, err := svc.CreateOrder(ctx, CreateOrderCommand{
		CustomerID:    customerID,
		PaymentMethod: "cash",
		Items:         []CreateOrderItem{{ProductID: productP, Quantity: 2}},
	})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(ctx, o.ID, "on hold")
	require.NoError(t, err)
	assert.Equal(t, domain.Status("ON_HOLD"), updated.Status)

	_, err = svc.UpdateStatus(ctx, o.ID, "cancelled")
	require.NoError(t, err)
	assert.Equal(t, 10, stockOf(t, store, productP))
}

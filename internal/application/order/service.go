package order

import (
	"context"
	"fmt"
	"sort"

	domain "order_backend/internal/domain/order"
	"order_backend/internal/domain/repository"
	"order_backend/pkg/logger"
)

// Publisher receives events for changes that have already been committed.
type Publisher interface {
	PublishOrderEvent(ctx context.Context, e domain.Event) error
}

type Options struct {
	// StrictStatus rejects status values outside the known lifecycle set.
	StrictStatus bool
}

type Service struct {
	uow          repository.UnitOfWork
	publisher    Publisher
	log          logger.Logger
	strictStatus bool
}

type CreateOrderItem struct {
	ProductID int64
	// Quantity zero means "not given" and is treated as 1.
	Quantity int
	Notes    *string
}

type CreateOrderCommand struct {
	CustomerID           int64
	PaymentMethod        string
	Items                []CreateOrderItem
	DeliveryAddress      *string
	DeliveryInstructions *string
}

// NewService wires the order core. publisher may be nil.
func NewService(uow repository.UnitOfWork, publisher Publisher, log logger.Logger, opts Options) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		uow:          uow,
		publisher:    publisher,
		log:          log,
		strictStatus: opts.StrictStatus,
	}
}

// CreateOrder checks the customer and stock of every item, persists the order
// with its lines and decrements inventory, all in one unit of work. Nothing
// is written when any check fails.
func (s *Service) CreateOrder(ctx context.Context, cmd CreateOrderCommand) (*domain.Order, error) {
	if len(cmd.Items) == 0 {
		return nil, domain.ErrNoItems
	}
	items := make([]CreateOrderItem, len(cmd.Items))
	for i, it := range cmd.Items {
		if it.Quantity < 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if it.Quantity == 0 {
			it.Quantity = 1
		}
		items[i] = it
	}

	var created *domain.Order
	err := s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		cust, err := repos.Customers.FindByID(ctx, cmd.CustomerID)
		if err != nil {
			return fmt.Errorf("find customer: %w", err)
		}
		if cust == nil {
			return fmt.Errorf("%w: %d", domain.ErrCustomerNotFound, cmd.CustomerID)
		}

		products, err := repos.Inventory.LockProducts(ctx, productIDs(items))
		if err != nil {
			return fmt.Errorf("lock products: %w", err)
		}

		// Quantities are summed per product so repeated lines are checked
		// against the stock they will consume together.
		requested := make(map[int64]int, len(products))
		lines := make([]domain.Line, 0, len(items))
		for _, it := range items {
			p, ok := products[it.ProductID]
			if !ok {
				return fmt.Errorf("%w: %d", domain.ErrProductNotFound, it.ProductID)
			}
			requested[p.ID] += it.Quantity
			if !p.HasStock(requested[p.ID]) {
				return &domain.StockError{ProductID: p.ID, Requested: requested[p.ID], Available: p.Stock}
			}
			lines = append(lines, domain.Line{
				ProductID:          p.ID,
				Quantity:           it.Quantity,
				UnitPrice:          p.Price,
				CollaboratorID:     p.CollaboratorID,
				CustomizationNotes: it.Notes,
			})
		}

		o, err := domain.NewOrder(cust.ID, cmd.PaymentMethod, lines, cmd.DeliveryAddress, cmd.DeliveryInstructions)
		if err != nil {
			return err
		}
		if err := repos.Orders.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, l := range o.Lines {
			ok, err := repos.Inventory.DecrementIfAvailable(ctx, l.ProductID, l.Quantity)
			if err != nil {
				return fmt.Errorf("decrement stock of product %d: %w", l.ProductID, err)
			}
			if !ok {
				return fmt.Errorf("%w: product %d changed during checkout", domain.ErrInsufficientStock, l.ProductID)
			}
		}

		created = o
		return nil
	})
	if err != nil {
		s.log.WithContext(ctx).Warn("order not created",
			logger.Int64("customer_id", cmd.CustomerID),
			logger.Int("items", len(items)),
			logger.Error(err),
		)
		return nil, err
	}

	s.log.WithContext(ctx).Info("order created",
		logger.Int64("order_id", created.ID),
		logger.Int64("customer_id", created.CustomerID),
		logger.String("total_amount", created.TotalAmount.StringFixed(2)),
	)
	s.publish(ctx, domain.NewCreatedEvent(created))
	return created, nil
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	o, err := s.uow.Repositories().Orders.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find order: %w", err)
	}
	if o == nil {
		return nil, domain.ErrOrderNotFound
	}
	return o, nil
}

// ListOrders returns orders in creation order. Bounding skip and limit is
// left to the caller.
func (s *Service) ListOrders(ctx context.Context, skip, limit int) ([]*domain.Order, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		return []*domain.Order{}, nil
	}
	orders, err := s.uow.Repositories().Orders.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// UpdateStatus stores the normalized status. Entering CANCELLED returns every
// line's quantity to stock; an order that is already cancelled is not
// restored again.
func (s *Service) UpdateStatus(ctx context.Context, id int64, rawStatus string) (*domain.Order, error) {
	next, err := domain.ParseStatus(rawStatus, s.strictStatus)
	if err != nil {
		return nil, err
	}

	var (
		updated  *domain.Order
		previous domain.Status
		restored bool
	)
	err = s.uow.Do(ctx, func(ctx context.Context, repos repository.Repositories) error {
		o, err := repos.Orders.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("find order: %w", err)
		}
		if o == nil {
			return domain.ErrOrderNotFound
		}

		previous = o.Status
		restored = o.ChangeStatus(next)
		if restored {
			for _, l := range o.Lines {
				if err := repos.Inventory.AdjustStock(ctx, l.ProductID, l.Quantity); err != nil {
					return fmt.Errorf("restore stock of product %d: %w", l.ProductID, err)
				}
			}
		}

		if err := repos.Orders.UpdateStatus(ctx, o.ID, o.Status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		updated = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := s.log.WithContext(ctx).WithFields(
		logger.Int64("order_id", updated.ID),
		logger.String("previous_status", previous.String()),
		logger.String("status", updated.Status.String()),
	)
	if restored {
		log.Info("order cancelled, stock restored", logger.Int("lines", len(updated.Lines)))
	} else {
		log.Info("order status updated")
	}
	s.publish(ctx, domain.NewStatusChangedEvent(updated, previous, restored))
	return updated, nil
}

// publish never fails the caller; the change is already committed.
func (s *Service) publish(ctx context.Context, e domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishOrderEvent(ctx, e); err != nil {
		s.log.WithContext(ctx).Error("publish order event failed",
			logger.String("event_id", e.ID),
			logger.String("event_type", string(e.Type)),
			logger.Int64("order_id", e.OrderID),
			logger.Error(err),
		)
	}
}

// productIDs returns the distinct ids in ascending order so row locks are
// always taken in the same sequence.
func productIDs(items []CreateOrderItem) []int64 {
	seen := make(map[int64]struct{}, len(items))
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

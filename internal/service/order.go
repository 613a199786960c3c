package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/apocighol/cevicheria-api/internal/domain"
	"github.com/apocighol/cevicheria-api/internal/repository"
)

var (
	ErrOrderNotFound     = repository.ErrOrderNotFound
	ErrOrderTerminal     = repository.ErrOrderTerminal
	ErrOrderStateChanged = repository.ErrOrderStateChanged

	ErrEmptyOrder           = errors.New("order needs at least one line")
	ErrInvalidQuantity      = errors.New("line quantity must be positive")
	ErrProductUnavailable   = errors.New("product is not available")
	ErrInvalidTransition    = errors.New("order state transition not allowed")
	ErrInvalidDiscount      = errors.New("discount must be between zero and the subtotal")
	ErrInvalidPaymentMethod = errors.New("unknown payment method")
	ErrPaymentMismatch      = errors.New("payments do not add up to the order total")
	ErrInsufficientTendered = errors.New("tendered cash is less than the amount due")
	ErrNoActiveOrders       = errors.New("table has no active orders")
)

type OrderRepository interface {
	Create(ctx context.Context, order domain.Order) (domain.Order, error)
	Void(ctx context.Context, id uint, reason, actor string, at time.Time) (domain.Order, error)
	UpdateStateFrom(ctx context.Context, id uint, from, to domain.OrderState) (domain.Order, error)
	UpdateDiscount(ctx context.Context, id uint, discount decimal.Decimal) (domain.Order, error)
	MarkPaid(ctx context.Context, id uint) error
	FindByID(ctx context.Context, id uint) (domain.Order, error)
	FindByCode(ctx context.Context, code string) (domain.Order, error)
	FindByTable(ctx context.Context, tableNumber int) ([]domain.Order, error)
	FindActiveByTable(ctx context.Context, tableNumber int) ([]domain.Order, error)
	FindByState(ctx context.Context, state domain.OrderState) ([]domain.Order, error)
	FindByDay(ctx context.Context, day time.Time) ([]domain.Order, error)
	FindByDayAndServer(ctx context.Context, day time.Time, server string) ([]domain.Order, error)
	FindVoided(ctx context.Context, from, to *time.Time, actor string) ([]domain.Order, error)
	FindPaidByDay(ctx context.Context, day time.Time) ([]domain.Order, error)
	Stats(ctx context.Context, day time.Time) (domain.OrderStats, error)
}

type OrderTableRepository interface {
	FindByNumber(ctx context.Context, number int) (domain.Table, error)
}

type OrderProductRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Product, error)
}

// StockDeducter runs the recipe deduction for a freshly created order.
type StockDeducter interface {
	DeductForSale(ctx context.Context, lines []domain.OrderLine) (domain.DeductionSummary, error)
}

// SalePoster records collected payments in the open cash session.
type SalePoster interface {
	RecordSale(ctx context.Context, movement domain.Movement) (domain.Movement, error)
}

type OrderLineInput struct {
	ProductID uint
	Quantity  int
	Note      string
}

type PaymentInput struct {
	Method   domain.PaymentMethod
	Amount   decimal.Decimal
	Tendered *decimal.Decimal
}

type OrderService struct {
	repo        OrderRepository
	tableRepo   OrderTableRepository
	productRepo OrderProductRepository
	deducter    StockDeducter
	till        SalePoster
}

func NewOrderService(repo OrderRepository, tableRepo OrderTableRepository, productRepo OrderProductRepository, deducter StockDeducter, till SalePoster) *OrderService {
	return &OrderService{
		repo:        repo,
		tableRepo:   tableRepo,
		productRepo: productRepo,
		deducter:    deducter,
		till:        till,
	}
}

// Create snapshots product names and prices into the order lines, persists
// the order together with the table total bump, then runs the recipe
// deduction. The deduction clamps at zero and never fails the order; its
// summary travels back so the caller can surface depletion alerts.
func (s *OrderService) Create(ctx context.Context, tableNumber int, server, note string, inputs []OrderLineInput) (domain.Order, domain.DeductionSummary, error) {
	if len(inputs) == 0 {
		return domain.Order{}, domain.DeductionSummary{}, ErrEmptyOrder
	}

	table, err := s.tableRepo.FindByNumber(ctx, tableNumber)
	if err != nil {
		return domain.Order{}, domain.DeductionSummary{}, fmt.Errorf("s.tableRepo.FindByNumber -> %w", err)
	}
	if !table.IsOccupied() {
		return domain.Order{}, domain.DeductionSummary{}, ErrTableNotOccupied
	}

	lines := make([]domain.OrderLine, 0, len(inputs))
	for _, input := range inputs {
		if input.Quantity <= 0 {
			return domain.Order{}, domain.DeductionSummary{}, ErrInvalidQuantity
		}

		product, err := s.productRepo.FindByID(ctx, input.ProductID)
		if err != nil {
			return domain.Order{}, domain.DeductionSummary{}, fmt.Errorf("s.productRepo.FindByID -> %w", err)
		}
		if !product.Available {
			return domain.Order{}, domain.DeductionSummary{}, ErrProductUnavailable
		}

		productID := product.ID
		lines = append(lines, domain.OrderLine{
			ProductID:   &productID,
			ProductName: product.Name,
			Quantity:    input.Quantity,
			UnitPrice:   product.Price,
			Note:        input.Note,
		})
	}

	order := domain.Order{
		Code:        newCode("PED"),
		TableNumber: tableNumber,
		Server:      server,
		State:       domain.OrderPending,
		Note:        note,
		Lines:       lines,
		Discount:    decimal.Zero,
	}
	order.Recalculate()

	created, err := s.repo.Create(ctx, order)
	if err != nil {
		return domain.Order{}, domain.DeductionSummary{}, fmt.Errorf("s.repo.Create -> %w", err)
	}

	summary, err := s.deducter.DeductForSale(ctx, created.Lines)
	if err != nil {
		return domain.Order{}, domain.DeductionSummary{}, fmt.Errorf("s.deducter.DeductForSale -> %w", err)
	}

	return created, summary, nil
}

// AdvanceState moves the order one step along pending, preparing, ready,
// served. Anything else is refused before touching the database.
func (s *OrderService) AdvanceState(ctx context.Context, id uint, target domain.OrderState) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if order.State.IsTerminal() {
		return domain.Order{}, ErrOrderTerminal
	}
	if !order.State.CanAdvanceTo(target) {
		return domain.Order{}, ErrInvalidTransition
	}

	updated, err := s.repo.UpdateStateFrom(ctx, id, order.State, target)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.UpdateStateFrom -> %w", err)
	}

	return updated, nil
}

// Void cancels the order and pulls its total back out of the table. Stock
// already deducted stays deducted; the plates were cooked.
func (s *OrderService) Void(ctx context.Context, id uint, reason, actor string) (domain.Order, error) {
	voided, err := s.repo.Void(ctx, id, reason, actor, time.Now())
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.Void -> %w", err)
	}

	return voided, nil
}

func (s *OrderService) ApplyDiscount(ctx context.Context, id uint, discount decimal.Decimal) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if order.State.IsTerminal() {
		return domain.Order{}, ErrOrderTerminal
	}
	if discount.IsNegative() || discount.GreaterThan(order.Subtotal) {
		return domain.Order{}, ErrInvalidDiscount
	}

	updated, err := s.repo.UpdateDiscount(ctx, id, discount)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.UpdateDiscount -> %w", err)
	}

	return updated, nil
}

// CollectPayment settles the order. Split payments are allowed as long as
// they add up to the exact total; each one lands in the open cash session as
// its own sale movement before the order flips to paid. Cash payments may
// carry a tendered amount, from which the change is computed.
func (s *OrderService) CollectPayment(ctx context.Context, id uint, payments []PaymentInput, actor string) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	if order.State.IsTerminal() {
		return domain.Order{}, ErrOrderTerminal
	}
	if len(payments) == 0 {
		return domain.Order{}, ErrPaymentMismatch
	}

	paid := decimal.Zero
	for _, p := range payments {
		if !p.Method.IsValid() {
			return domain.Order{}, ErrInvalidPaymentMethod
		}
		if !p.Amount.IsPositive() {
			return domain.Order{}, ErrPaymentMismatch
		}
		if p.Tendered != nil && p.Tendered.LessThan(p.Amount) {
			return domain.Order{}, ErrInsufficientTendered
		}
		paid = paid.Add(p.Amount)
	}
	if !paid.Equal(order.Total) {
		return domain.Order{}, ErrPaymentMismatch
	}

	for _, p := range payments {
		movement := domain.Movement{
			Kind:        domain.MovementSale,
			Description: fmt.Sprintf("orden %s, mesa %d", order.Code, order.TableNumber),
			Amount:      p.Amount,
			Method:      p.Method,
			Tendered:    p.Tendered,
			RecordedBy:  actor,
		}
		if p.Method == domain.PayCash && p.Tendered != nil {
			change := p.Tendered.Sub(p.Amount)
			movement.Change = &change
		}

		if _, err := s.till.RecordSale(ctx, movement); err != nil {
			return domain.Order{}, fmt.Errorf("s.till.RecordSale -> %w", err)
		}
	}

	if err := s.repo.MarkPaid(ctx, id); err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.MarkPaid -> %w", err)
	}

	paidOrder, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return paidOrder, nil
}

// CollectTable settles every active order on the table with a single payment
// method, oldest first. Each order posts its own sale movement before it
// flips to paid, so a till failure midway leaves the remaining orders
// collectable and the already-paid ones are skipped on retry.
func (s *OrderService) CollectTable(ctx context.Context, tableNumber int, method domain.PaymentMethod, actor string) ([]domain.Order, error) {
	if !method.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}

	table, err := s.tableRepo.FindByNumber(ctx, tableNumber)
	if err != nil {
		return nil, fmt.Errorf("s.tableRepo.FindByNumber -> %w", err)
	}

	orders, err := s.repo.FindActiveByTable(ctx, table.Number)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindActiveByTable -> %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrNoActiveOrders
	}

	paid := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		movement := domain.Movement{
			Kind:        domain.MovementSale,
			Description: fmt.Sprintf("orden %s, mesa %d", order.Code, order.TableNumber),
			Amount:      order.Total,
			Method:      method,
			RecordedBy:  actor,
		}
		if _, err := s.till.RecordSale(ctx, movement); err != nil {
			return nil, fmt.Errorf("s.till.RecordSale -> %w", err)
		}

		if err := s.repo.MarkPaid(ctx, order.ID); err != nil {
			return nil, fmt.Errorf("s.repo.MarkPaid -> %w", err)
		}

		order.State = domain.OrderPaid
		paid = append(paid, order)
	}

	return paid, nil
}

func (s *OrderService) GetByID(ctx context.Context, id uint) (domain.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	return order, nil
}

func (s *OrderService) GetByCode(ctx context.Context, code string) (domain.Order, error) {
	order, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		return domain.Order{}, fmt.Errorf("s.repo.FindByCode -> %w", err)
	}

	return order, nil
}

func (s *OrderService) ListByTable(ctx context.Context, tableNumber int, activeOnly bool) ([]domain.Order, error) {
	var (
		orders []domain.Order
		err    error
	)
	if activeOnly {
		orders, err = s.repo.FindActiveByTable(ctx, tableNumber)
	} else {
		orders, err = s.repo.FindByTable(ctx, tableNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByTable -> %w", err)
	}

	return orders, nil
}

func (s *OrderService) ListByState(ctx context.Context, state domain.OrderState) ([]domain.Order, error) {
	orders, err := s.repo.FindByState(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByState -> %w", err)
	}

	return orders, nil
}

func (s *OrderService) ListByDay(ctx context.Context, day time.Time, server string) ([]domain.Order, error) {
	var (
		orders []domain.Order
		err    error
	)
	if server != "" {
		orders, err = s.repo.FindByDayAndServer(ctx, day, server)
	} else {
		orders, err = s.repo.FindByDay(ctx, day)
	}
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindByDay -> %w", err)
	}

	return orders, nil
}

func (s *OrderService) ListVoided(ctx context.Context, from, to *time.Time, actor string) ([]domain.Order, error) {
	orders, err := s.repo.FindVoided(ctx, from, to, actor)
	if err != nil {
		return nil, fmt.Errorf("s.repo.FindVoided -> %w", err)
	}

	return orders, nil
}

func (s *OrderService) Stats(ctx context.Context) (domain.OrderStats, error) {
	stats, err := s.repo.Stats(ctx, time.Now())
	if err != nil {
		return domain.OrderStats{}, fmt.Errorf("s.repo.Stats -> %w", err)
	}

	return stats, nil
}

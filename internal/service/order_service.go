package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/iliyamo/distributor-orders/internal/model"
	"github.com/iliyamo/distributor-orders/internal/repository"
	"github.com/iliyamo/distributor-orders/internal/validate"
)

// Notifier is told about new orders. Calls happen off the request path.
type Notifier interface {
	NotifyOrderPlaced(ctx context.Context, o model.Order) error
}

// TotalPolicy decides what happens when a submitted total disagrees
// with the line items.
type TotalPolicy string

const (
	TotalPolicyLog    TotalPolicy = "log"
	TotalPolicyReject TotalPolicy = "reject"
	TotalPolicyOff    TotalPolicy = "off"
)

// OrderOptions tunes the order rules.
type OrderOptions struct {
	TotalPolicy TotalPolicy
	Tolerance   decimal.Decimal
	// StrictTransitions enforces the status workflow; otherwise any
	// status may be set directly.
	StrictTransitions bool
	// NotifyTimeout bounds each notification attempt.
	NotifyTimeout time.Duration
}

const (
	defaultPage     = 1
	defaultPageSize = 10
)

// OrderService owns order creation, the status and fulfillment type
// attributes, and listing.
type OrderService struct {
	orders    repository.OrderRepository
	notifier  Notifier
	validator *validate.Validator
	opts      OrderOptions
	log       *zap.SugaredLogger
	now       func() time.Time
}

// NewOrderService builds the service. notifier may be nil.
func NewOrderService(orders repository.OrderRepository, notifier Notifier, v *validate.Validator, opts OrderOptions, log *zap.SugaredLogger) *OrderService {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if opts.TotalPolicy == "" {
		opts.TotalPolicy = TotalPolicyLog
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 30 * time.Second
	}
	return &OrderService{orders: orders, notifier: notifier, validator: v, opts: opts, log: log, now: time.Now}
}

// PlaceOrderInput is the order submission body. The owner always comes
// from the token, never from the body.
type PlaceOrderInput struct {
	Customer  *model.Customer       `json:"customer" validate:"required"`
	Products  []model.LineItem      `json:"products" validate:"required,min=1,dive"`
	Total     *decimal.Decimal      `json:"total" validate:"-"`
	Date      string                `json:"date" validate:"required,max=64"`
	OrderType model.FulfillmentType `json:"orderType" validate:"required,oneof=delivery bilti"`
}

// PlaceOrder stores a pending order owned by userID and notifies
// without waiting. A notification failure is logged and never undoes
// the order.
func (s *OrderService) PlaceOrder(ctx context.Context, userID string, in PlaceOrderInput) (model.Order, error) {
	if userID == "" {
		return model.Order{}, ErrForbidden
	}
	in.Date = strings.TrimSpace(in.Date)
	if err := s.validator.Validate(in); err != nil {
		return model.Order{}, &ValidationError{Msg: err.Error()}
	}
	if in.Total == nil || in.Total.IsZero() {
		return model.Order{}, invalid("total is required")
	}
	if in.Total.IsNegative() {
		return model.Order{}, invalid("total must be positive")
	}
	if err := s.checkTotal(in.Products, *in.Total); err != nil {
		return model.Order{}, err
	}

	now := s.now().UTC()
	o := model.Order{
		Customer:  *in.Customer,
		Items:     in.Products,
		Total:     *in.Total,
		Timestamp: in.Date,
		Type:      in.OrderType,
		Status:    model.StatusPending,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.orders.Create(ctx, &o); err != nil {
		return model.Order{}, storeErr("order", err)
	}
	s.notify(ctx, o)
	return o, nil
}

func (s *OrderService) checkTotal(items []model.LineItem, supplied decimal.Decimal) error {
	if s.opts.TotalPolicy == TotalPolicyOff {
		return nil
	}
	computed, err := model.ComputeTotal(items)
	if err != nil {
		if s.opts.TotalPolicy == TotalPolicyReject {
			return invalid("cannot verify total: %v", err)
		}
		s.log.Warnw("order total not verifiable", "err", err)
		return nil
	}
	if computed.Sub(supplied).Abs().LessThanOrEqual(s.opts.Tolerance) {
		return nil
	}
	if s.opts.TotalPolicy == TotalPolicyReject {
		return invalid("total %s does not match line items (%s)", supplied.String(), computed.String())
	}
	s.log.Warnw("order total mismatch accepted", "supplied", supplied.String(), "computed", computed.String())
	return nil
}

func (s *OrderService) notify(ctx context.Context, o model.Order) {
	if s.notifier == nil {
		return
	}
	// detached: the request may finish before delivery does
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.NotifyTimeout)
	go func() {
		defer cancel()
		if err := s.notifier.NotifyOrderPlaced(nctx, o); err != nil {
			s.log.Errorw("order notification failed", "order_id", o.ID, "err", err)
		}
	}()
}

// UpdateStatus sets the order status. With strict transitions the
// change must follow the workflow; setting the current status again is
// always allowed and only refreshes the update time.
func (s *OrderService) UpdateStatus(ctx context.Context, id string, status model.OrderStatus) (model.Order, error) {
	if !status.Valid() {
		return model.Order{}, invalid("invalid status %q", status)
	}
	if s.opts.StrictTransitions {
		cur, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return model.Order{}, storeErr("order", err)
		}
		if err := model.CanTransition(cur.Status, status); err != nil {
			return model.Order{}, &TransitionError{cause: err}
		}
	}
	o, err := s.orders.UpdateByID(ctx, id, repository.OrderUpdate{Status: &status, UpdatedAt: s.now().UTC()})
	if err != nil {
		return model.Order{}, storeErr("order", err)
	}
	return o, nil
}

// TransitionError is a status change rejected by the workflow.
type TransitionError struct{ cause error }

func (e *TransitionError) Error() string { return e.cause.Error() }

func (e *TransitionError) Is(target error) bool { return target == ErrTransitionNotAllowed }

func (e *TransitionError) Unwrap() error { return e.cause }

// UpdateFulfillmentType switches between delivery and bilti,
// independently of status.
func (s *OrderService) UpdateFulfillmentType(ctx context.Context, id string, t model.FulfillmentType) (model.Order, error) {
	if !t.Valid() {
		return model.Order{}, invalid("invalid orderType %q", t)
	}
	o, err := s.orders.UpdateByID(ctx, id, repository.OrderUpdate{Type: &t, UpdatedAt: s.now().UTC()})
	if err != nil {
		return model.Order{}, storeErr("order", err)
	}
	return o, nil
}

// OrderQuery holds the raw listing parameters. Malformed dates are
// ignored rather than rejected; page and limit fall back to 1 and 10.
type OrderQuery struct {
	DateFrom  string
	DateTo    string
	OrderType string
	Page      string
	Limit     string
}

// OrderPage is one page of the admin listing.
type OrderPage struct {
	Orders []model.Order `json:"orders"`
	Total  int64         `json:"total"`
	Page   int           `json:"page"`
	Pages  int           `json:"pages"`
}

func (q OrderQuery) filter() repository.OrderFilter {
	var f repository.OrderFilter
	if from, _, ok := parseDate(q.DateFrom); ok {
		f.CreatedFrom = from
	}
	if to, dateOnly, ok := parseDate(q.DateTo); ok {
		if dateOnly {
			// a bare date includes the whole day
			to = to.Add(24*time.Hour - time.Nanosecond)
		}
		f.CreatedTo = to
	}
	if t := model.FulfillmentType(strings.TrimSpace(q.OrderType)); t.Valid() {
		f.Type = t
	}
	return f
}

// parseDate accepts 2006-01-02 (UTC) or RFC 3339.
func parseDate(s string) (t time.Time, dateOnly bool, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false, false
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, true, true
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), false, true
	}
	return time.Time{}, false, false
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// ListOrders returns one page of all orders, newest first.
func (s *OrderService) ListOrders(ctx context.Context, q OrderQuery) (OrderPage, error) {
	page := positiveInt(q.Page, defaultPage)
	limit := positiveInt(q.Limit, defaultPageSize)
	f := q.filter()

	total, err := s.orders.Count(ctx, f)
	if err != nil {
		return OrderPage{}, err
	}
	var orders []model.Order
	// a page whose offset does not fit in an int lies past the end
	if page-1 <= math.MaxInt/limit {
		orders, err = s.orders.Find(ctx, f, repository.FindOptions{Skip: (page - 1) * limit, Limit: limit})
		if err != nil {
			return OrderPage{}, err
		}
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return OrderPage{
		Orders: orders,
		Total:  total,
		Page:   page,
		Pages:  int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

// ListOwnOrders returns only the orders owned by userID, newest first.
func (s *OrderService) ListOwnOrders(ctx context.Context, userID string) ([]model.Order, error) {
	if userID == "" {
		return nil, ErrForbidden
	}
	orders, err := s.orders.Find(ctx, repository.OrderFilter{UserID: userID}, repository.FindOptions{})
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []model.Order{}
	}
	return orders, nil
}

// ExportOrders returns every order matching the listing filters, unpaged.
func (s *OrderService) ExportOrders(ctx context.Context, q OrderQuery) ([]model.Order, error) {
	return s.orders.Find(ctx, q.filter(), repository.FindOptions{})
}

package internal

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cornell-dti/curaise-sub000/internal/model"
)

// storeTimeout bounds persistence work inside the webhook path so a slow
// database cannot stall the acknowledgement.
const storeTimeout = 5 * time.Second

type IService interface {
	ProcessNotification(context.Context, Notification) error
	Reconcile(context.Context, string, decimal.Decimal) (model.Order, error)
	GetAnalytics(context.Context, string) (model.AnalyticsResult, error)
	GetOrders(context.Context, string) ([]model.OrderOutput, error)
	CompletePickup(context.Context, string) error
}

type Service struct {
	Repository    IRepository
	allowedSender string
	logger        *zap.SugaredLogger
}

func NewService(repository IRepository, allowedSender string, logger *zap.SugaredLogger) *Service {
	return &Service{Repository: repository, allowedSender: allowedSender, logger: logger}
}

// ProcessNotification runs the ingestion pipeline for one inbound payment
// notification: sender check, body selection, format detection, parsing,
// reconciliation. Every failure comes back as a typed error; the handler
// decides how that maps onto the acknowledgement.
func (s Service) ProcessNotification(ctx context.Context, n Notification) error {
	if n.Sender != s.allowedSender {
		return ErrSenderRejected
	}

	body := n.Body()
	if strings.TrimSpace(body) == "" {
		return ErrNoContent
	}

	p, err := Parse(body, DetectFormat(body))
	if err != nil {
		return err
	}
	if p.OrderID == "" || p.Amount.IsZero() {
		return ErrParsedIncomplete
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	order, err := s.Reconcile(ctx, p.OrderID, p.Amount)
	if err != nil {
		return err
	}

	s.logger.Infof("confirmed payment of %s for order %s", p.Amount.StringFixed(2), order.ID)
	return nil
}

// Reconcile recomputes the order total from current item prices and
// confirms the payment when the paid amount matches within tolerance.
// Confirming an already confirmed order is a no-op; the status never
// moves backwards.
func (s Service) Reconcile(ctx context.Context, orderID string, paid decimal.Decimal) (model.Order, error) {
	order, err := s.Repository.GetOrderByID(ctx, orderID)
	if err != nil {
		return model.Order{}, err
	}

	expected, err := s.expectedTotal(ctx, order)
	if err != nil {
		return model.Order{}, err
	}

	if !WithinTolerance(paid, expected) {
		return model.Order{}, &AmountMismatchError{Expected: expected, Received: paid}
	}

	return s.Repository.UpdateOrderPayment(ctx, orderID, model.PaymentMethodPeerToPeer, model.PaymentStatusConfirmed)
}

func (s Service) expectedTotal(ctx context.Context, order model.Order) (decimal.Decimal, error) {
	ids := make([]string, 0, len(order.Lines))
	for _, l := range order.Lines {
		ids = append(ids, l.ItemID)
	}

	items, err := s.Repository.GetItemsByID(ctx, ids)
	if err != nil {
		return decimal.Decimal{}, err
	}

	prices := make(map[string]decimal.Decimal, len(items))
	for _, i := range items {
		prices[i.ID] = i.Price
	}

	total := decimal.Zero
	for _, l := range order.Lines {
		price, ok := prices[l.ItemID]
		if !ok {
			return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrItemNotFound, l.ItemID)
		}
		total = total.Add(price.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return total, nil
}

func (s Service) GetAnalytics(ctx context.Context, fundraiserID string) (model.AnalyticsResult, error) {
	orders, err := s.Repository.ListOrdersByFundraiser(ctx, fundraiserID)
	if err != nil {
		return model.AnalyticsResult{}, err
	}

	res := Aggregate(orders)
	res.RevenueSeries = RevenueSeries(res.RevenueByDay, time.Now(), analyticsWindowDays)
	return res, nil
}

func (s Service) GetOrders(ctx context.Context, fundraiserID string) ([]model.OrderOutput, error) {
	orders, err := s.Repository.ListOrdersByFundraiser(ctx, fundraiserID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNoRecords
	}

	out := make([]model.OrderOutput, 0, len(orders))
	for _, o := range orders {
		out = append(out, model.OrderOutput{
			ID:            o.ID,
			BuyerID:       o.BuyerID,
			PaymentMethod: o.PaymentMethod,
			PaymentStatus: o.PaymentStatus,
			PickedUp:      o.PickedUp,
			Total:         o.Total(),
			CreatedAt:     o.CreatedAt,
		})
	}
	return out, nil
}

func (s Service) CompletePickup(ctx context.Context, orderID string) error {
	return s.Repository.SetPickupCompleted(ctx, orderID)
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/port"
	"github.com/agrohub/marketplace/internal/repository"
)

const notifyTimeout = 10 * time.Second

// OrderService is the read/update workflow over persisted orders:
// capability-based access control plus the status transition side effect.
type OrderService struct {
	orders   port.OrderRepository
	users    port.UserRepository
	notifier port.Notifier
	audit    port.AuditSink
	logger   *slog.Logger
}

func NewOrderWorkflow(orders port.OrderRepository, users port.UserRepository, notifier port.Notifier, audit port.AuditSink, logger *slog.Logger) *OrderService {
	return &OrderService{
		orders:   orders,
		users:    users,
		notifier: notifier,
		audit:    audit,
		logger:   logger,
	}
}

func (s *OrderService) Get(ctx context.Context, actor domain.Actor, orderID int64) (domain.Order, error) {
	var o domain.Order

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return o, ErrOrderNotFound
		}
		return o, fmt.Errorf("orders.GetOrder: %w", err)
	}

	caps := s.capabilities(ctx, actor, order)
	if !caps.Read {
		return o, ErrForbidden
	}

	return order, nil
}

// List returns the actor's visible orders newest-first: own purchases for
// buyers, the company's sales for vendors, everything for admins.
func (s *OrderService) List(ctx context.Context, actor domain.Actor) ([]domain.Order, error) {
	var filter domain.OrderFilter

	switch actor.Role {
	case domain.RoleAdmin:
		// unfiltered

	case domain.RoleVendor:
		vendorIDs := []int64{actor.UserID}

		if actor.CompanyID != nil {
			companyVendorIDs, err := s.users.ListCompanyVendorIDs(ctx, *actor.CompanyID)
			if err != nil {
				return nil, fmt.Errorf("users.ListCompanyVendorIDs: %w", err)
			}
			if len(companyVendorIDs) > 0 {
				vendorIDs = companyVendorIDs
			}
		}

		filter.VendorIDs = vendorIDs

	default:
		filter.UserIDs = []int64{actor.UserID}
	}

	orders, err := s.orders.ListOrders(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("orders.ListOrders: %w", err)
	}

	return orders, nil
}

// UpdateStatus sets any of the four statuses; transitions are not forced
// to be forward-only, matching the existing workflow. A move to Shipped or
// Delivered notifies the buyer; notification failure never rolls back the
// update.
func (s *OrderService) UpdateStatus(ctx context.Context, actor domain.Actor, orderID int64, status domain.OrderStatus) (domain.Order, error) {
	var o domain.Order

	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return o, ErrOrderNotFound
		}
		return o, fmt.Errorf("orders.GetOrder: %w", err)
	}

	caps := s.capabilities(ctx, actor, order)
	if !caps.UpdateStatus {
		return o, ErrForbidden
	}

	updated, err := s.orders.UpdateOrderStatus(ctx, orderID, status)
	if err != nil {
		return o, fmt.Errorf("orders.UpdateOrderStatus: %w", err)
	}

	if status.NotifiesBuyer() {
		s.notifyBuyer(ctx, updated)
	}

	if err := s.audit.Record(ctx, domain.AuditEntry{
		UserID:     actor.UserID,
		Action:     "order.status_updated",
		EntityType: "order",
		EntityID:   orderID,
		Details:    map[string]any{"status": string(status)},
	}); err != nil {
		s.logger.WarnContext(ctx, "audit record failed", "order_id", orderID, "error", err)
	}

	return updated, nil
}

func (s *OrderService) notifyBuyer(ctx context.Context, order domain.Order) {
	// Best-effort: the status change is already committed, so failures
	// here are logged and swallowed.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	buyer, err := s.users.GetUser(ctx, order.UserID)
	if err != nil {
		s.logger.WarnContext(ctx, "buyer lookup for notification failed",
			"order_id", order.ID, "user_id", order.UserID, "error", err)
		return
	}

	if buyer.Phone == "" {
		return
	}

	text := fmt.Sprintf("Order %s: status %s", order.OrderNumber, order.Status)
	if err := s.notifier.Send(ctx, buyer.Phone, text); err != nil {
		s.logger.WarnContext(ctx, "order notification failed",
			"order_id", order.ID, "error", err)
	}
}

// capabilities resolves the company of the order's vendor and computes the
// actor's capability set. A failed lookup degrades to no company rather
// than failing the request.
func (s *OrderService) capabilities(ctx context.Context, actor domain.Actor, order domain.Order) domain.Capabilities {
	var vendorCompanyID *int64

	if actor.Role == domain.RoleVendor && actor.CompanyID != nil {
		vendor, err := s.users.GetUser(ctx, order.VendorID)
		if err != nil {
			s.logger.WarnContext(ctx, "vendor lookup for access check failed",
				"order_id", order.ID, "vendor_id", order.VendorID, "error", err)
		} else {
			vendorCompanyID = vendor.CompanyID
		}
	}

	return domain.OrderCapabilities(actor, order, vendorCompanyID)
}

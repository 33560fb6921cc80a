package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrohub/marketplace/internal/domain"
	"github.com/agrohub/marketplace/internal/service"
)

type orderFixture struct {
	orders   *fakeOrderRepo
	users    *fakeUserRepo
	notifier *fakeNotifier
	audit    *fakeAudit
	svc      *service.OrderService
}

func newOrderFixture() *orderFixture {
	companyA := lo.ToPtr(int64(30))

	f := &orderFixture{
		orders: newFakeOrderRepo(),
		users: &fakeUserRepo{users: map[int64]domain.User{
			100: {ID: 100, Role: domain.RoleFarmer, Phone: "+77010000100", Name: "Buyer"},
			200: {ID: 200, Role: domain.RoleVendor, Phone: "+77010000200", CompanyID: companyA},
			201: {ID: 201, Role: domain.RoleVendor, CompanyID: companyA},
			202: {ID: 202, Role: domain.RoleVendor, CompanyID: lo.ToPtr(int64(31))},
		}},
		notifier: &fakeNotifier{},
		audit:    &fakeAudit{},
	}

	f.svc = service.NewOrderWorkflow(f.orders, f.users, f.notifier, f.audit, discardLogger())

	return f
}

func (f *orderFixture) seedOrder(t *testing.T, userID, vendorID int64) domain.Order {
	t.Helper()

	order, err := f.orders.InsertOrder(context.Background(), domain.Order{
		UserID:      userID,
		VendorID:    vendorID,
		TotalAmount: money("100.00"),
		Status:      domain.OrderStatusNew,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, PriceAtOrder: money("50.00")},
		},
	})
	require.NoError(t, err)

	return order
}

func TestOrderGet_Access(t *testing.T) {
	f := newOrderFixture()
	order := f.seedOrder(t, 100, 200)
	ctx := context.Background()

	companyA := lo.ToPtr(int64(30))

	tests := []struct {
		name    string
		actor   domain.Actor
		wantErr error
	}{
		{"buyer reads own order", domain.Actor{UserID: 100, Role: domain.RoleFarmer}, nil},
		{"stranger buyer is forbidden", domain.Actor{UserID: 101, Role: domain.RoleFarmer}, service.ErrForbidden},
		{"selling vendor reads", domain.Actor{UserID: 200, Role: domain.RoleVendor, CompanyID: companyA}, nil},
		{"colleague vendor reads", domain.Actor{UserID: 201, Role: domain.RoleVendor, CompanyID: companyA}, nil},
		{"other company vendor is forbidden", domain.Actor{UserID: 202, Role: domain.RoleVendor, CompanyID: lo.ToPtr(int64(31))}, service.ErrForbidden},
		{"admin reads anything", domain.Actor{UserID: 1, Role: domain.RoleAdmin}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.Get(ctx, tt.actor, order.ID)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, order.ID, got.ID)
		})
	}
}

func TestOrderGet_NotFound(t *testing.T) {
	f := newOrderFixture()

	_, err := f.svc.Get(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleAdmin}, 999)
	assert.ErrorIs(t, err, service.ErrOrderNotFound)
}

func TestOrderList_Visibility(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	bySelling := f.seedOrder(t, 100, 200)   // company 30 sale
	byColleague := f.seedOrder(t, 101, 201) // company 30 sale
	byOther := f.seedOrder(t, 100, 202)     // company 31 sale

	t.Run("admin sees everything newest first", func(t *testing.T) {
		orders, err := f.svc.List(ctx, domain.Actor{UserID: 1, Role: domain.RoleAdmin})
		require.NoError(t, err)
		require.Len(t, orders, 3)
		assert.Equal(t, byOther.ID, orders[0].ID)
		assert.Equal(t, byColleague.ID, orders[1].ID)
		assert.Equal(t, bySelling.ID, orders[2].ID)
	})

	t.Run("buyer sees own purchases only", func(t *testing.T) {
		orders, err := f.svc.List(ctx, domain.Actor{UserID: 100, Role: domain.RoleFarmer})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, byOther.ID, orders[0].ID)
		assert.Equal(t, bySelling.ID, orders[1].ID)
	})

	t.Run("company vendor sees the whole company's sales", func(t *testing.T) {
		orders, err := f.svc.List(ctx, domain.Actor{UserID: 201, Role: domain.RoleVendor, CompanyID: lo.ToPtr(int64(30))})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, byColleague.ID, orders[0].ID)
		assert.Equal(t, bySelling.ID, orders[1].ID)
	})

	t.Run("companyless vendor sees only own sales", func(t *testing.T) {
		orders, err := f.svc.List(ctx, domain.Actor{UserID: 202, Role: domain.RoleVendor})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, byOther.ID, orders[0].ID)
	})
}

func TestOrderUpdateStatus(t *testing.T) {
	companyA := lo.ToPtr(int64(30))
	vendor := domain.Actor{UserID: 200, Role: domain.RoleVendor, CompanyID: companyA}

	t.Run("buyer cannot change status", func(t *testing.T) {
		f := newOrderFixture()
		order := f.seedOrder(t, 100, 200)

		_, err := f.svc.UpdateStatus(context.Background(), domain.Actor{UserID: 100, Role: domain.RoleFarmer}, order.ID, domain.OrderStatusPaid)
		assert.ErrorIs(t, err, service.ErrForbidden)
	})

	t.Run("vendor moves to Paid without notification", func(t *testing.T) {
		f := newOrderFixture()
		order := f.seedOrder(t, 100, 200)

		updated, err := f.svc.UpdateStatus(context.Background(), vendor, order.ID, domain.OrderStatusPaid)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusPaid, updated.Status)
		assert.Empty(t, f.notifier.sent)

		require.Len(t, f.audit.entries, 1)
		assert.Equal(t, "order.status_updated", f.audit.entries[0].Action)
		assert.Equal(t, "Paid", f.audit.entries[0].Details["status"])
	})

	t.Run("shipping notifies the buyer by SMS", func(t *testing.T) {
		f := newOrderFixture()
		order := f.seedOrder(t, 100, 200)

		updated, err := f.svc.UpdateStatus(context.Background(), vendor, order.ID, domain.OrderStatusShipped)
		require.NoError(t, err)

		require.Len(t, f.notifier.sent, 1)
		assert.Equal(t, "+77010000100", f.notifier.sent[0].Phone)
		assert.Contains(t, f.notifier.sent[0].Text, updated.OrderNumber)
		assert.Contains(t, f.notifier.sent[0].Text, "Shipped")
	})

	t.Run("notification failure does not fail the update", func(t *testing.T) {
		f := newOrderFixture()
		order := f.seedOrder(t, 100, 200)
		f.notifier.err = errors.New("gateway timeout")

		updated, err := f.svc.UpdateStatus(context.Background(), vendor, order.ID, domain.OrderStatusDelivered)
		require.NoError(t, err)
		assert.Equal(t, domain.OrderStatusDelivered, updated.Status)
	})

	t.Run("buyer without phone is skipped silently", func(t *testing.T) {
		f := newOrderFixture()
		f.users.users[100] = domain.User{ID: 100, Role: domain.RoleFarmer}
		order := f.seedOrder(t, 100, 200)

		_, err := f.svc.UpdateStatus(context.Background(), vendor, order.ID, domain.OrderStatusShipped)
		require.NoError(t, err)
		assert.Empty(t, f.notifier.sent)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newOrderFixture()

		_, err := f.svc.UpdateStatus(context.Background(), domain.Actor{UserID: 1, Role: domain.RoleAdmin}, 999, domain.OrderStatusPaid)
		assert.ErrorIs(t, err, service.ErrOrderNotFound)
	})
}

package service

import (
	"context"
	"testing"
	"time"

	"storefront/internal/domain"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func boolPtr(v bool) *bool { return &v }

type orderFixture struct {
	store  *memStore
	orders OrderService
	owner  domain.User
	admin  domain.User
	other  domain.User
	order  domain.Order
}

func newOrderFixture() *orderFixture {
	store := newMemStore()
	f := &orderFixture{
		store:  store,
		orders: NewOrderService(&mockOrderRepository{store}, &mockUserRepository{store}, zap.NewNop()),
		owner:  domain.User{ID: uuid.New(), Name: "Owner", Email: "owner@example.com"},
		admin:  domain.User{ID: uuid.New(), Name: "Admin", Email: "admin@example.com", IsAdmin: true},
		other:  domain.User{ID: uuid.New(), Name: "Other", Email: "other@example.com"},
	}
	for _, u := range []domain.User{f.owner, f.admin, f.other} {
		store.users[u.ID] = u
	}

	f.order = domain.Order{
		ID:              uuid.New(),
		UserID:          f.owner.ID,
		Items:           []domain.OrderItem{{ProductID: uuid.New(), Name: "A", Price: 100, Quantity: 1}},
		ShippingAddress: *validAddress(),
		PaymentMethod:   "COD",
		CreatedAt:       time.Now(),
	}
	store.orders[f.order.ID] = f.order
	return f
}

func TestOrderService_GetEnforcesOwnership(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	order, err := f.orders.Get(ctx, f.owner.ID, f.order.ID)
	require.NoError(t, err)
	assert.Equal(t, f.order.ID, order.ID)

	_, err = f.orders.Get(ctx, f.admin.ID, f.order.ID)
	require.NoError(t, err)

	_, err = f.orders.Get(ctx, f.other.ID, f.order.ID)
	require.ErrorIs(t, err, ErrNotOrderOwner)

	_, err = f.orders.Get(ctx, uuid.New(), f.order.ID)
	require.ErrorIs(t, err, ErrNotOrderOwner)

	_, err = f.orders.Get(ctx, f.owner.ID, uuid.New())
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestOrderService_Listings(t *testing.T) {
	f := newOrderFixture()
	newer := f.order
	newer.ID = uuid.New()
	newer.CreatedAt = f.order.CreatedAt.Add(time.Hour)
	f.store.orders[newer.ID] = newer

	theirs := f.order
	theirs.ID = uuid.New()
	theirs.UserID = f.other.ID
	f.store.orders[theirs.ID] = theirs

	mine, err := f.orders.ListMine(context.Background(), f.owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, newer.ID, mine[0].ID)

	all, err := f.orders.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, o := range all {
		require.NotNil(t, o.User)
		assert.Equal(t, o.UserID, o.User.ID)
	}
}

func TestOrderService_MarkPaidAndDelivered(t *testing.T) {
	f := newOrderFixture()
	ctx := context.Background()

	paid, err := f.orders.MarkPaid(ctx, f.order.ID, &domain.PaymentResult{ID: "txn-1", Status: "COMPLETED"})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, "txn-1", paid.PaymentResult.ID)
	assert.False(t, paid.PaymentConfirmedByAdmin)

	delivered, err := f.orders.MarkDelivered(ctx, f.order.ID)
	require.NoError(t, err)
	assert.True(t, delivered.IsDelivered)
	require.NotNil(t, delivered.DeliveredAt)
	assert.False(t, delivered.FulfilmentDone)

	_, err = f.orders.MarkDelivered(ctx, uuid.New())
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestOrderService_EmptyTrackingUpdateIsNoop(t *testing.T) {
	f := newOrderFixture()

	order, err := f.orders.UpdateAdminTracking(context.Background(), f.order.ID, domain.AdminTracking{})
	require.NoError(t, err)
	assert.False(t, order.PaymentConfirmedByAdmin)
	assert.False(t, order.OrderPlacedWithVendor)
	assert.False(t, order.FulfilmentDone)

	_, err = f.orders.UpdateAdminTracking(context.Background(), uuid.New(), domain.AdminTracking{})
	require.ErrorIs(t, err, repository.ErrOrderNotFound)
}

func TestProperty_TrackingFlagsAreIndependent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a partial update changes only the flags it names", prop.ForAll(
		func(setPayment, setVendor, setFulfil bool, value bool) bool {
			f := newOrderFixture()
			ctx := context.Background()

			// start from a known mixed state
			start, err := f.orders.UpdateAdminTracking(ctx, f.order.ID, domain.AdminTracking{
				PaymentConfirmedByAdmin: boolPtr(true),
				OrderPlacedWithVendor:   boolPtr(false),
				FulfilmentDone:          boolPtr(true),
			})
			if err != nil {
				return false
			}

			update := domain.AdminTracking{}
			want := *start
			if setPayment {
				update.PaymentConfirmedByAdmin = boolPtr(value)
				want.PaymentConfirmedByAdmin = value
			}
			if setVendor {
				update.OrderPlacedWithVendor = boolPtr(value)
				want.OrderPlacedWithVendor = value
			}
			if setFulfil {
				update.FulfilmentDone = boolPtr(value)
				want.FulfilmentDone = value
			}

			got, err := f.orders.UpdateAdminTracking(ctx, f.order.ID, update)
			if err != nil {
				return false
			}
			return got.PaymentConfirmedByAdmin == want.PaymentConfirmedByAdmin &&
				got.OrderPlacedWithVendor == want.OrderPlacedWithVendor &&
				got.FulfilmentDone == want.FulfilmentDone &&
				!got.IsPaid && !got.IsDelivered
		},
		gen.Bool(), gen.Bool(), gen.Bool(), gen.Bool(),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

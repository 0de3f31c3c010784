// internal/domain/checkout/orchestrator_test.go
package checkout

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/tax"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

type fakeCarts struct {
	mu    sync.Mutex
	items []cart.SnapshotItem
}

func (f *fakeCarts) Snapshot(_ context.Context, _ uint) (*cart.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := &cart.Snapshot{Items: append([]cart.SnapshotItem(nil), f.items...)}
	for _, item := range f.items {
		snap.Subtotal += item.UnitPrice * float64(item.Quantity)
	}
	return snap, nil
}

func (f *fakeCarts) Clear(_ context.Context, _ uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	return nil
}

func (f *fakeCarts) empty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items) == 0
}

type fakeOrders struct {
	mu      sync.Mutex
	created []order.Draft
	err     error
}

func (f *fakeOrders) Create(_ context.Context, draft order.Draft) (*order.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, draft)
	return &order.Order{
		ID:            "11111111-2222-3333-4444-555555555555",
		OrderNumber:   "ORD-20260827-000042",
		UserID:        draft.UserID,
		GrandTotal:    draft.GrandTotal,
		PaymentMethod: draft.PaymentMethod,
		PaymentStatus: draft.PaymentStatus,
	}, nil
}

type fakeAddressBook struct {
	addr order.Address
}

func (f *fakeAddressBook) Shipping(_ context.Context, _, _ uint) (order.Address, error) {
	return f.addr, nil
}

type fakeGateway struct {
	calls atomic.Int32
	delay time.Duration
	err   error
}

func (f *fakeGateway) CreateGatewayOrder(_ context.Context, _ float64, _ string, _ AmountBreakdown) (string, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return "", f.err
	}
	n := f.calls.Add(1)
	if n == 1 {
		return "order_gw_test_1", nil
	}
	return "order_gw_test_dup", nil
}

type fakeVerifier struct {
	err error
}

func (f *fakeVerifier) VerifyPayment(_ context.Context, _ VerificationRequest) error {
	return f.err
}

type fakeCoupons struct {
	discount float64
	err      error
}

func (f *fakeCoupons) Discount(_ context.Context, _ string, _ float64) (float64, error) {
	return f.discount, f.err
}

type fakeStock struct {
	err error
}

func (f *fakeStock) CheckStock(_ context.Context, _ uint, _ int) error {
	return f.err
}

type fixture struct {
	orch     *Orchestrator
	store    *MemorySessionStore
	carts    *fakeCarts
	orders   *fakeOrders
	coupons  *fakeCoupons
	stock    *fakeStock
	gateway  *fakeGateway
	verifier *fakeVerifier
}

func validAddress() order.Address {
	return order.Address{
		Name:    "Asha Rao",
		Line1:   "14 MG Road",
		City:    "Bengaluru",
		State:   "Karnataka",
		Pincode: "560001",
	}
}

func newFixture() *fixture {
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &fixture{
		store: NewMemorySessionStore(),
		carts: &fakeCarts{items: []cart.SnapshotItem{
			{ProductID: 1, Name: "Steel Bottle", Quantity: 2, UnitPrice: 118},
		}},
		orders:   &fakeOrders{},
		coupons:  &fakeCoupons{},
		stock:    &fakeStock{},
		gateway:  &fakeGateway{},
		verifier: &fakeVerifier{},
	}
	f.orch = NewOrchestrator(
		f.store, f.carts, f.orders,
		&fakeAddressBook{addr: validAddress()},
		f.coupons, f.stock,
		f.gateway, f.verifier, nil,
		tax.NewLedger(18),
		pricing.ShippingPolicy{FreeThreshold: 500, Fee: 50},
		"INR",
		log,
	)
	return f
}

// toAwaiting drives a fresh session up to GatewayAwaitingUserAction.
func (f *fixture) toAwaiting(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)
	_, err = f.orch.SelectPaymentMethod(ctx, 7, order.MethodRazorpay)
	require.NoError(t, err)
	_, err = f.orch.ProceedToPayment(ctx, 7)
	require.NoError(t, err)
}

func ptrAddress(a order.Address) *order.Address { return &a }

func TestCheckout_RazorpaySettles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.toAwaiting(t)

	session, err := f.orch.GetState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateGatewayAwaitingUserAction, session.State)
	assert.Equal(t, "order_gw_test_1", session.GatewayOrderID)
	assert.True(t, f.store.ProcessingHeld(7))
	assert.False(t, f.carts.empty(), "cart must survive until verification confirms")

	session, err = f.orch.HandleGatewayResult(ctx, 7, GatewayResult{
		Status:    ResultSuccess,
		PaymentID: "pay_test_9",
		Signature: "sig",
	})
	require.NoError(t, err)

	assert.Equal(t, StateSettled, session.State)
	assert.True(t, f.carts.empty(), "cart clears only on settlement")
	assert.False(t, f.store.ProcessingHeld(7))
	require.Len(t, f.orders.created, 1)
	assert.Equal(t, order.PaymentStatusPaid, f.orders.created[0].PaymentStatus)
	assert.Equal(t, "pay_test_9", f.orders.created[0].GatewayPaymentID)
}

func TestCheckout_CashOnDeliverySettlesSynchronously(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)
	_, err = f.orch.SelectPaymentMethod(ctx, 7, order.MethodCashOnDelivery)
	require.NoError(t, err)

	intent, err := f.orch.ProceedToPayment(ctx, 7)
	require.NoError(t, err)

	assert.Equal(t, order.MethodCashOnDelivery, intent.Method)
	assert.NotEmpty(t, intent.OrderID)
	assert.Zero(t, f.gateway.calls.Load(), "no gateway round trip for cash on delivery")
	assert.True(t, f.carts.empty())
	assert.False(t, f.store.ProcessingHeld(7))

	session, err := f.orch.GetState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateSettled, session.State)

	require.Len(t, f.orders.created, 1)
	assert.Equal(t, order.PaymentStatusPending, f.orders.created[0].PaymentStatus)
}

func TestCheckout_TotalsFromInclusivePrices(t *testing.T) {
	// Two units at 118 inclusive of 18%: base 200, tax 36, below the free
	// shipping threshold so fee 50, payable 286.
	f := newFixture()
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)
	_, err = f.orch.SelectPaymentMethod(ctx, 7, order.MethodCashOnDelivery)
	require.NoError(t, err)
	_, err = f.orch.ProceedToPayment(ctx, 7)
	require.NoError(t, err)

	require.Len(t, f.orders.created, 1)
	draft := f.orders.created[0]
	assert.InDelta(t, 200, draft.Subtotal, 0.001)
	assert.InDelta(t, 36, draft.TaxAmount, 0.001)
	assert.Equal(t, 50.0, draft.ShippingFee)
	assert.Equal(t, 286.0, draft.GrandTotal)

	require.Len(t, draft.Items, 1)
	item := draft.Items[0]
	require.NotNil(t, item.BasePrice)
	require.NotNil(t, item.TaxPerUnit)
	assert.InDelta(t, 100, *item.BasePrice, 0.001)
	assert.InDelta(t, 18, *item.TaxPerUnit, 0.001)
}

func TestCheckout_EmptyCartShortCircuits(t *testing.T) {
	f := newFixture()
	f.carts.items = nil

	_, err := f.orch.Begin(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
}

func TestCheckout_AddressInvariantSharedByBothPaths(t *testing.T) {
	ctx := context.Background()

	manual := newFixture()
	_, err := manual.orch.Begin(ctx, 7)
	require.NoError(t, err)
	bad := validAddress()
	bad.Pincode = "5600"
	_, err = manual.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: &bad})
	assert.True(t, apperr.IsValidation(err), "manual path rejects a short pincode")

	registered := newFixture()
	registered.orch.addresses = &fakeAddressBook{addr: bad}
	_, err = registered.orch.Begin(ctx, 7)
	require.NoError(t, err)
	addressID := uint(3)
	_, err = registered.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{AddressID: &addressID})
	assert.True(t, apperr.IsValidation(err), "registered path gets no relaxed validation")
}

func TestCheckout_DismissalAlwaysCancelsAndClearsFlag(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.toAwaiting(t)

	// First attempt fails at the gateway widget.
	session, err := f.orch.HandleGatewayResult(ctx, 7, GatewayResult{Status: ResultFailure, Reason: "card declined"})
	require.NoError(t, err)
	assert.Equal(t, StateFailed, session.State)
	assert.False(t, f.store.ProcessingHeld(7))
	assert.False(t, f.carts.empty(), "cart survives a failed attempt")

	// Retry, then dismiss the widget: must land in Cancelled with the flag
	// cleared even after the earlier failure.
	_, err = f.orch.ProceedToPayment(ctx, 7)
	require.NoError(t, err)
	session, err = f.orch.HandleGatewayResult(ctx, 7, GatewayResult{Status: ResultDismissed})
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, session.State)
	assert.False(t, f.store.ProcessingHeld(7))
	assert.False(t, f.carts.empty())
	assert.Empty(t, f.orders.created)
}

func TestCheckout_DuplicateGatewayCallbackSettlesOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.toAwaiting(t)

	result := GatewayResult{Status: ResultSuccess, PaymentID: "pay_test_9", Signature: "sig"}
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orch.HandleGatewayResult(ctx, 7, result)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		if err == nil {
			succeeded++
		} else if apperr.IsValidation(err) {
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	require.Len(t, f.orders.created, 1, "one payment settles exactly one order")

	session, err := f.orch.GetState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateSettled, session.State)
}

func TestCheckout_RedeliveredCallbackAfterSettleRejected(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.toAwaiting(t)

	result := GatewayResult{Status: ResultSuccess, PaymentID: "pay_test_9", Signature: "sig"}
	_, err := f.orch.HandleGatewayResult(ctx, 7, result)
	require.NoError(t, err)

	_, err = f.orch.HandleGatewayResult(ctx, 7, result)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Len(t, f.orders.created, 1)
}

func TestCheckout_VerificationFailurePreservesCart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.toAwaiting(t)

	f.verifier.err = errors.New("signature mismatch")
	_, err := f.orch.HandleGatewayResult(ctx, 7, GatewayResult{
		Status:    ResultSuccess,
		PaymentID: "pay_test_9",
		Signature: "bad",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsVerification(err))

	session, err := f.orch.GetState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateFailed, session.State)
	assert.False(t, f.carts.empty(), "cart is never cleared on an unconfirmed payment")
	assert.Empty(t, f.orders.created)
	assert.False(t, f.store.ProcessingHeld(7))
}

func TestCheckout_GatewayErrorIsRetryable(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)
	_, err = f.orch.SelectPaymentMethod(ctx, 7, order.MethodRazorpay)
	require.NoError(t, err)

	f.gateway.err = errors.New("connection refused")
	_, err = f.orch.ProceedToPayment(ctx, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsGateway(err))
	assert.False(t, f.store.ProcessingHeld(7), "flag clears so the shopper can retry")

	f.gateway.err = nil
	intent, err := f.orch.ProceedToPayment(ctx, 7)
	require.NoError(t, err)
	assert.NotEmpty(t, intent.GatewayOrderID)
}

func TestCheckout_ConcurrentProceedCreatesOneGatewayOrder(t *testing.T) {
	f := newFixture()
	f.gateway.delay = 50 * time.Millisecond
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)
	_, err = f.orch.SelectPaymentMethod(ctx, 7, order.MethodRazorpay)
	require.NoError(t, err)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orch.ProceedToPayment(ctx, 7)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, rejected int
	for err := range errs {
		if err == nil {
			succeeded++
		} else if apperr.IsValidation(err) {
			rejected++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)
	assert.Equal(t, int32(1), f.gateway.calls.Load(), "exactly one gateway order")
}

func TestCheckout_CouponDiscountFlowsIntoTotals(t *testing.T) {
	// Base 200, coupon 40, taxable 160, tax 36, below threshold so fee 50:
	// payable 246.
	f := newFixture()
	f.coupons.discount = 40
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)

	session, err := f.orch.ApplyCoupon(ctx, 7, "SAVE40")
	require.NoError(t, err)
	assert.Equal(t, "SAVE40", session.CouponCode)
	assert.Equal(t, 40.0, session.Discount)

	_, err = f.orch.SelectPaymentMethod(ctx, 7, order.MethodCashOnDelivery)
	require.NoError(t, err)
	_, err = f.orch.ProceedToPayment(ctx, 7)
	require.NoError(t, err)

	require.Len(t, f.orders.created, 1)
	draft := f.orders.created[0]
	assert.Equal(t, "SAVE40", draft.CouponCode)
	assert.InDelta(t, 40, draft.DiscountAmount, 0.001)
	assert.Equal(t, 246.0, draft.GrandTotal)
}

func TestCheckout_InvalidCouponRejectedInPlace(t *testing.T) {
	f := newFixture()
	f.coupons.err = apperr.Validation("invalid coupon code")
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)

	_, err = f.orch.ApplyCoupon(ctx, 7, "NOPE")
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))

	session, err := f.orch.GetState(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, session.CouponCode, "a rejected coupon leaves the session untouched")
}

func TestCheckout_RemoveCouponClearsDiscount(t *testing.T) {
	f := newFixture()
	f.coupons.discount = 40
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)
	_, err = f.orch.ApplyCoupon(ctx, 7, "SAVE40")
	require.NoError(t, err)

	session, err := f.orch.RemoveCoupon(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, session.CouponCode)
	assert.Zero(t, session.Discount)
}

func TestCheckout_OutOfStockBlocksProceed(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)
	_, err = f.orch.SelectPaymentMethod(ctx, 7, order.MethodRazorpay)
	require.NoError(t, err)

	f.stock.err = apperr.Validation("insufficient stock")
	_, err = f.orch.ProceedToPayment(ctx, 7)
	require.Error(t, err)
	assert.True(t, apperr.IsValidation(err))
	assert.Zero(t, f.gateway.calls.Load(), "no gateway order for an unfillable cart")
	assert.False(t, f.store.ProcessingHeld(7))

	session, err := f.orch.GetState(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StatePaymentMethodSelected, session.State)
}

func TestCheckout_ResumeReturnsExistingSession(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	_, err = f.orch.SubmitAddress(ctx, 7, &SubmitAddressRequest{Manual: ptrAddress(validAddress())})
	require.NoError(t, err)

	session, err := f.orch.Begin(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, StateAddressConfirmed, session.State, "a second begin resumes, not resets")
}

func TestStateTransitionTable(t *testing.T) {
	assert.True(t, StateIdle.CanTransition(StateAddressPending))
	assert.True(t, StateGatewayAwaitingUserAction.CanTransition(StateCancelled))
	assert.False(t, StateSettled.CanTransition(StateGatewayInitiating), "settled is terminal")
	assert.False(t, StateIdle.CanTransition(StateSettled))
	assert.True(t, StateVerificationPending.InFlight())
	assert.False(t, StateFailed.InFlight())
}

// internal/domain/checkout/orchestrator.go
package checkout

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/your-org/storefront-backend/internal/domain/cart"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/pricing"
	"github.com/your-org/storefront-backend/internal/domain/tax"
	"github.com/your-org/storefront-backend/internal/pkg/apperr"
)

// Orchestrator drives a checkout session through the settlement state
// machine. All transitions run to completion before the next event is
// accepted; the session store's processing flag keeps a second payment
// attempt out while one is in flight.
//
// The core invariant: the cart is cleared only after the verifier has
// confirmed the payment and the order row exists. Every failure path leaves
// the cart exactly as it was.
type Orchestrator struct {
	store     SessionStore
	carts     Carts
	orders    Orders
	addresses AddressBook
	coupons   Coupons
	stock     StockChecker
	gateway   Gateway
	verifier  Verifier
	publisher Publisher // optional
	ledger    *tax.Ledger
	policy    pricing.ShippingPolicy
	currency  string
	log       *logrus.Logger
}

// NewOrchestrator wires the checkout orchestrator with its collaborators.
func NewOrchestrator(
	store SessionStore,
	carts Carts,
	orders Orders,
	addresses AddressBook,
	coupons Coupons,
	stock StockChecker,
	gateway Gateway,
	verifier Verifier,
	publisher Publisher,
	ledger *tax.Ledger,
	policy pricing.ShippingPolicy,
	currency string,
	log *logrus.Logger,
) *Orchestrator {
	return &Orchestrator{
		store:     store,
		carts:     carts,
		orders:    orders,
		addresses: addresses,
		coupons:   coupons,
		stock:     stock,
		gateway:   gateway,
		verifier:  verifier,
		publisher: publisher,
		ledger:    ledger,
		policy:    policy,
		currency:  currency,
		log:       log,
	}
}

// GetState returns the shopper's current checkout session, an Idle one if
// none has been started.
func (o *Orchestrator) GetState(ctx context.Context, userID uint) (*Session, error) {
	session, err := o.store.Load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return &Session{UserID: userID, State: StateIdle}, nil
	}
	return session, nil
}

// Begin starts (or restarts) a checkout for a non-empty cart. An empty cart
// short-circuits with a validation error; it never enters the state machine.
func (o *Orchestrator) Begin(ctx context.Context, userID uint) (*Session, error) {
	snap, err := o.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, apperr.Validation("cart is empty")
	}

	session, err := o.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.State.Terminal() {
		// Previous checkout settled; start fresh.
		session = &Session{UserID: userID, State: StateIdle}
	}
	if session.State != StateIdle {
		// Already under way; resume where the shopper left off.
		return session, nil
	}

	if err := o.transition(ctx, session, StateAddressPending); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitAddressRequest carries one of the two address paths: a registered
// address id, or a manually entered address. Both converge on the same
// validated shape.
type SubmitAddressRequest struct {
	AddressID *uint          `json:"address_id,omitempty"`
	Manual    *order.Address `json:"manual,omitempty"`
}

// SubmitAddress resolves and validates the shipping address, then confirms it
// on the session.
func (o *Orchestrator) SubmitAddress(ctx context.Context, userID uint, req *SubmitAddressRequest) (*Session, error) {
	session, err := o.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !session.State.CanTransition(StateAddressConfirmed) {
		return nil, apperr.Validation("cannot submit address while checkout is %s", session.State)
	}

	var addr order.Address
	switch {
	case req.AddressID != nil:
		addr, err = o.addresses.Shipping(ctx, userID, *req.AddressID)
		if err != nil {
			return nil, err
		}
	case req.Manual != nil:
		addr = *req.Manual
	default:
		return nil, apperr.Validation("either address_id or manual address is required")
	}

	// Identical invariant for both paths; the registered path gets no pass.
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	session.Address = addr
	session.HasAddress = true
	if err := o.transition(ctx, session, StateAddressConfirmed); err != nil {
		return nil, err
	}
	return session, nil
}

// SelectPaymentMethod records the chosen payment method.
func (o *Orchestrator) SelectPaymentMethod(ctx context.Context, userID uint, method order.PaymentMethod) (*Session, error) {
	if method != order.MethodRazorpay && method != order.MethodCashOnDelivery {
		return nil, apperr.Validation("unsupported payment method %q", method)
	}

	session, err := o.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !session.HasAddress {
		return nil, apperr.Validation("shipping address must be confirmed first")
	}
	if !session.State.CanTransition(StatePaymentMethodSelected) {
		return nil, apperr.Validation("cannot select payment method while checkout is %s", session.State)
	}

	session.PaymentMethod = method
	if err := o.transition(ctx, session, StatePaymentMethodSelected); err != nil {
		return nil, err
	}
	return session, nil
}

// ApplyCoupon validates a coupon against the current cart and records it on
// the session. The discount is revalidated at proceed time, so a cart edited
// after applying cannot carry a stale discount into settlement.
func (o *Orchestrator) ApplyCoupon(ctx context.Context, userID uint, code string) (*Session, error) {
	session, err := o.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.State == StateIdle || session.State.Terminal() || session.State.InFlight() {
		return nil, apperr.Validation("cannot apply a coupon while checkout is %s", session.State)
	}

	snap, err := o.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap.IsEmpty() {
		return nil, apperr.Validation("cart is empty")
	}

	discount, err := o.coupons.Discount(ctx, code, snap.Subtotal)
	if err != nil {
		return nil, err
	}

	session.CouponCode = code
	session.Discount = discount
	if err := o.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// RemoveCoupon clears any applied coupon from the session.
func (o *Orchestrator) RemoveCoupon(ctx context.Context, userID uint) (*Session, error) {
	session, err := o.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.State.InFlight() {
		return nil, apperr.Validation("cannot remove a coupon while a payment is in flight")
	}

	session.CouponCode = ""
	session.Discount = 0
	if err := o.store.Save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// ProceedToPayment fixes the cart snapshot and totals, then either creates a
// gateway order (online payment) or settles synchronously (cash on delivery).
// The processing flag is taken before any external call; a concurrent second
// call from the same session is rejected so at most one gateway order exists
// per attempt.
func (o *Orchestrator) ProceedToPayment(ctx context.Context, userID uint) (*PaymentIntent, error) {
	session, err := o.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	switch session.State {
	case StatePaymentMethodSelected, StateFailed, StateCancelled:
	default:
		return nil, apperr.Validation("cannot proceed to payment while checkout is %s", session.State)
	}
	if session.PaymentMethod == "" {
		return nil, apperr.Validation("payment method must be selected first")
	}

	acquired, err := o.store.AcquireProcessing(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperr.Validation("a payment attempt is already in progress")
	}

	// A retry after failure or cancellation restarts from method selection.
	if session.State == StateFailed || session.State == StateCancelled {
		if err := o.transition(ctx, session, StatePaymentMethodSelected); err != nil {
			return nil, o.abort(ctx, session, err)
		}
	}

	snap, err := o.carts.Snapshot(ctx, userID)
	if err != nil {
		return nil, o.abort(ctx, session, err)
	}
	if snap.IsEmpty() {
		return nil, o.abort(ctx, session, apperr.Validation("cart is empty"))
	}

	// Availability can have changed since the items were added.
	for _, item := range snap.Items {
		if err := o.stock.CheckStock(ctx, item.ProductID, item.Quantity); err != nil {
			return nil, o.abort(ctx, session, err)
		}
	}

	// Revalidate any applied coupon against the cart as it stands now.
	if session.CouponCode != "" {
		discount, err := o.coupons.Discount(ctx, session.CouponCode, snap.Subtotal)
		if err != nil {
			return nil, o.abort(ctx, session, err)
		}
		session.Discount = discount
	}

	totals, items, err := o.priceCart(snap, session.Discount)
	if err != nil {
		return nil, o.abort(ctx, session, err)
	}
	session.Snapshot = snap
	session.Totals = totals

	if session.PaymentMethod == order.MethodCashOnDelivery {
		return o.settleCashOnDelivery(ctx, session, items)
	}

	if err := o.transition(ctx, session, StateGatewayInitiating); err != nil {
		return nil, o.abort(ctx, session, err)
	}

	gatewayOrderID, err := o.gateway.CreateGatewayOrder(ctx, totals.GrandTotal, o.currency, AmountBreakdown{
		Subtotal:    totals.Subtotal,
		Discount:    totals.Discount,
		TaxAmount:   totals.TaxAmount,
		ShippingFee: totals.ShippingFee,
	})
	if err != nil {
		o.fail(ctx, session, fmt.Sprintf("gateway order creation failed: %v", err))
		if apperr.KindOf(err) == apperr.KindGateway {
			return nil, err
		}
		return nil, apperr.Gateway("failed to create gateway order", err)
	}
	if gatewayOrderID == "" {
		o.fail(ctx, session, "gateway returned an empty order id")
		return nil, apperr.Gateway("gateway returned an empty order id", nil)
	}

	session.GatewayOrderID = gatewayOrderID
	if err := o.transition(ctx, session, StateGatewayAwaitingUserAction); err != nil {
		return nil, o.abort(ctx, session, err)
	}

	o.log.WithFields(logrus.Fields{
		"user_id":          userID,
		"gateway_order_id": gatewayOrderID,
		"amount":           totals.GrandTotal,
	}).Info("gateway order created")

	return &PaymentIntent{
		Method:         order.MethodRazorpay,
		GatewayOrderID: gatewayOrderID,
		Amount:         totals.GrandTotal,
		Currency:       o.currency,
	}, nil
}

// HandleGatewayResult consumes the single discrete event the gateway widget
// resolves to: completed, failed, or dismissed by the shopper.
func (o *Orchestrator) HandleGatewayResult(ctx context.Context, userID uint, result GatewayResult) (*Session, error) {
	session, err := o.GetState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if session.State != StateGatewayAwaitingUserAction {
		return nil, apperr.Validation("no payment is awaiting confirmation")
	}

	// Gateways redeliver results. Consume the attempt atomically so a doubled
	// callback cannot settle the same payment twice; the loser sees the same
	// rejection as any other out-of-order event.
	acquired, err := o.store.AcquireCallback(ctx, userID, session.GatewayOrderID)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, apperr.Validation("gateway result for this payment attempt was already received")
	}

	switch result.Status {
	case ResultDismissed:
		// Deterministic: dismissal always lands in Cancelled with the flag
		// cleared so the shopper can retry immediately.
		if err := o.transition(ctx, session, StateCancelled); err != nil {
			return nil, err
		}
		if err := o.store.ReleaseProcessing(ctx, userID); err != nil {
			return nil, err
		}
		return session, nil

	case ResultFailure:
		o.fail(ctx, session, result.Reason)
		return session, nil

	case ResultSuccess:
		return o.verifyAndSettle(ctx, session, result)

	default:
		return nil, apperr.Validation("unknown gateway result status %q", result.Status)
	}
}

func (o *Orchestrator) verifyAndSettle(ctx context.Context, session *Session, result GatewayResult) (*Session, error) {
	if err := o.transition(ctx, session, StateVerificationPending); err != nil {
		return nil, err
	}

	err := o.verifier.VerifyPayment(ctx, VerificationRequest{
		GatewayOrderID: session.GatewayOrderID,
		PaymentID:      result.PaymentID,
		Signature:      result.Signature,
		Amount:         session.Totals.GrandTotal,
		Currency:       o.currency,
	})
	if err != nil {
		// Anything short of explicit success keeps the cart intact.
		o.fail(ctx, session, fmt.Sprintf("payment verification failed: %v", err))
		if apperr.KindOf(err) == apperr.KindVerification {
			return nil, err
		}
		return nil, apperr.Verification("payment verification failed", err)
	}

	_, items, err := o.priceCart(session.Snapshot, session.Totals.Discount)
	if err != nil {
		o.fail(ctx, session, err.Error())
		return nil, err
	}

	ord, err := o.orders.Create(ctx, o.draft(session, items, order.PaymentStatusPaid, result.PaymentID))
	if err != nil {
		o.fail(ctx, session, fmt.Sprintf("order persistence failed: %v", err))
		return nil, apperr.Internal("failed to persist settled order", err)
	}

	return o.finishSettlement(ctx, session, ord)
}

func (o *Orchestrator) settleCashOnDelivery(ctx context.Context, session *Session, items []order.LineItem) (*PaymentIntent, error) {
	// No gateway round trip; order creation is the verification equivalent.
	if err := o.transition(ctx, session, StateVerificationPending); err != nil {
		return nil, o.abort(ctx, session, err)
	}

	ord, err := o.orders.Create(ctx, o.draft(session, items, order.PaymentStatusPending, ""))
	if err != nil {
		o.fail(ctx, session, fmt.Sprintf("order persistence failed: %v", err))
		return nil, err
	}

	if _, err := o.finishSettlement(ctx, session, ord); err != nil {
		return nil, err
	}

	return &PaymentIntent{
		Method:   order.MethodCashOnDelivery,
		Amount:   session.Totals.GrandTotal,
		Currency: o.currency,
		OrderID:  ord.ID,
	}, nil
}

// finishSettlement clears the cart and marks the session settled. The order
// already exists at this point; a cart-clear failure is logged but does not
// undo settlement.
func (o *Orchestrator) finishSettlement(ctx context.Context, session *Session, ord *order.Order) (*Session, error) {
	if err := o.carts.Clear(ctx, session.UserID); err != nil {
		o.log.WithError(err).WithField("order_id", ord.ID).Warn("failed to clear cart after settlement")
	}

	session.OrderID = ord.ID
	if err := o.transition(ctx, session, StateSettled); err != nil {
		return nil, err
	}
	if err := o.store.ReleaseProcessing(ctx, session.UserID); err != nil {
		return nil, err
	}

	o.log.WithFields(logrus.Fields{
		"user_id":      session.UserID,
		"order_id":     ord.ID,
		"order_number": ord.OrderNumber,
		"grand_total":  ord.GrandTotal,
	}).Info("checkout settled")

	if o.publisher != nil {
		if err := o.publisher.OrderSettled(ctx, ord); err != nil {
			o.log.WithError(err).Warn("failed to publish order settled event")
		}
	}
	return session, nil
}

// priceCart runs the tax ledger and totals over a cart snapshot. The returned
// subtotal is the tax-exclusive base; catalog prices are tax-inclusive and
// the ledger extracts the tax component per line.
func (o *Orchestrator) priceCart(snap *cart.Snapshot, discount float64) (pricing.Totals, []order.LineItem, error) {
	inputs := make([]tax.LineInput, 0, len(snap.Items))
	for _, item := range snap.Items {
		inputs = append(inputs, tax.LineInput{
			ProductName: item.Name,
			HSNCode:     item.HSNCode,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			RatePercent: item.GSTRate,
		})
	}

	breakdown, err := o.ledger.ComputeOrder(inputs, 0, 0)
	if err != nil {
		return pricing.Totals{}, nil, err
	}

	var baseSubtotal float64
	items := make([]order.LineItem, 0, len(breakdown.Lines))
	for i, line := range breakdown.Lines {
		baseSubtotal += line.BasePrice * float64(line.Quantity)

		basePrice := line.BasePrice
		ratePercent := line.RatePercent
		taxPerUnit := line.TaxPerUnit
		items = append(items, order.LineItem{
			ProductID:      snap.Items[i].ProductID,
			Name:           line.ProductName,
			HSNCode:        snap.Items[i].HSNCode,
			Quantity:       line.Quantity,
			UnitPrice:      line.UnitPrice,
			LineTotal:      line.LineTotal,
			BasePrice:      &basePrice,
			TaxRatePercent: &ratePercent,
			TaxPerUnit:     &taxPerUnit,
		})
	}

	totals, err := pricing.Compute(baseSubtotal, discount, breakdown.TotalTax, o.policy)
	if err != nil {
		return pricing.Totals{}, nil, err
	}
	return totals, items, nil
}

func (o *Orchestrator) draft(session *Session, items []order.LineItem, status order.PaymentStatus, paymentID string) order.Draft {
	return order.Draft{
		UserID:           session.UserID,
		Items:            items,
		Subtotal:         session.Totals.Subtotal,
		DiscountAmount:   session.Totals.Discount,
		CouponCode:       session.CouponCode,
		ShippingFee:      session.Totals.ShippingFee,
		TaxAmount:        session.Totals.TaxAmount,
		GrandTotal:       session.Totals.GrandTotal,
		ShippingAddress:  session.Address,
		PaymentMethod:    session.PaymentMethod,
		PaymentStatus:    status,
		GatewayOrderID:   session.GatewayOrderID,
		GatewayPaymentID: paymentID,
	}
}

// fail moves the session to Failed and clears the processing flag; the cart
// is untouched.
func (o *Orchestrator) fail(ctx context.Context, session *Session, reason string) {
	o.log.WithFields(logrus.Fields{
		"user_id": session.UserID,
		"state":   string(session.State),
		"reason":  reason,
	}).Warn("checkout payment attempt failed")

	if err := o.transition(ctx, session, StateFailed); err != nil {
		o.log.WithError(err).Error("failed to record checkout failure")
	}
	if err := o.store.ReleaseProcessing(ctx, session.UserID); err != nil {
		o.log.WithError(err).Error("failed to release checkout processing flag")
	}

	if o.publisher != nil {
		if err := o.publisher.PaymentFailed(ctx, session.UserID, session.GatewayOrderID, reason); err != nil {
			o.log.WithError(err).Warn("failed to publish payment failed event")
		}
	}
}

// abort releases the processing flag without changing state, for errors that
// happen before any external side effect.
func (o *Orchestrator) abort(ctx context.Context, session *Session, cause error) error {
	if err := o.store.ReleaseProcessing(ctx, session.UserID); err != nil {
		o.log.WithError(err).Error("failed to release checkout processing flag")
	}
	return cause
}

func (o *Orchestrator) transition(ctx context.Context, session *Session, target State) error {
	if !session.State.CanTransition(target) {
		return apperr.Validation("illegal checkout transition from %s to %s", session.State, target)
	}
	o.log.WithFields(logrus.Fields{
		"user_id": session.UserID,
		"from":    string(session.State),
		"to":      string(target),
	}).Debug("checkout transition")
	session.State = target
	return o.store.Save(ctx, session)
}

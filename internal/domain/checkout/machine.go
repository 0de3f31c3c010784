// internal/domain/checkout/machine.go
package checkout

// State is a checkout session's position in the settlement flow.
type State string

const (
	StateIdle                      State = "idle"
	StateAddressPending            State = "address_pending"
	StateAddressConfirmed          State = "address_confirmed"
	StatePaymentMethodSelected     State = "payment_method_selected"
	StateGatewayInitiating         State = "gateway_initiating"
	StateGatewayAwaitingUserAction State = "gateway_awaiting_user_action"
	StateVerificationPending       State = "verification_pending"
	StateSettled                   State = "settled"
	StateFailed                    State = "failed"
	StateCancelled                 State = "cancelled"
)

// transitions is the full set of legal state moves. Every orchestrator entry
// point checks this table before acting, so an out-of-order event from the
// client degrades to a validation error instead of corrupting the session.
var transitions = map[State][]State{
	StateIdle:                  {StateAddressPending},
	StateAddressPending:        {StateAddressConfirmed},
	StateAddressConfirmed:      {StateAddressConfirmed, StatePaymentMethodSelected},
	StatePaymentMethodSelected: {StateAddressConfirmed, StatePaymentMethodSelected, StateGatewayInitiating, StateVerificationPending},
	StateGatewayInitiating:     {StateGatewayAwaitingUserAction, StateFailed},
	// Exactly one of: payment completed, gateway-reported failure, user
	// dismissed the widget.
	StateGatewayAwaitingUserAction: {StateVerificationPending, StateFailed, StateCancelled},
	StateVerificationPending:       {StateSettled, StateFailed},
	// Failed and Cancelled are re-entrant: the shopper retries by re-confirming
	// the address or re-selecting a method, or re-initiates payment directly.
	StateFailed:    {StateAddressConfirmed, StatePaymentMethodSelected, StateGatewayInitiating},
	StateCancelled: {StateAddressConfirmed, StatePaymentMethodSelected, StateGatewayInitiating},
	StateSettled:   {},
}

// CanTransition reports whether moving from s to target is legal.
func (s State) CanTransition(target State) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the session is finished. Settled is the only state
// with no outgoing transitions; Failed and Cancelled allow retries.
func (s State) Terminal() bool {
	return s == StateSettled
}

// InFlight reports whether a payment attempt is between gateway initiation and
// verification. While in flight a second proceed-to-payment from the same
// session is rejected by the processing flag.
func (s State) InFlight() bool {
	switch s {
	case StateGatewayInitiating, StateGatewayAwaitingUserAction, StateVerificationPending:
		return true
	}
	return false
}

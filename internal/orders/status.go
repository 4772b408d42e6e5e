package orders

import "fmt"

type Status string

const (
	StatusAwaitingAdminCost     Status = "AwaitingAdminCost"
	StatusAwaitingUserApproval  Status = "AwaitingUserApproval"
	StatusAwaitingPayment       Status = "AwaitingPayment"
	StatusPaymentConfirmPending Status = "PaymentConfirmPending"
	StatusReadyToShip           Status = "ReadyToShip"
	StatusShipped               Status = "Shipped"
	StatusDelivered             Status = "Delivered"
	StatusCancelled             Status = "Cancelled"
)

var validNext = map[Status]map[Status]bool{
	StatusAwaitingAdminCost:     {StatusAwaitingUserApproval: true},
	StatusAwaitingUserApproval:  {StatusAwaitingPayment: true, StatusReadyToShip: true, StatusCancelled: true},
	StatusAwaitingPayment:       {StatusPaymentConfirmPending: true},
	StatusPaymentConfirmPending: {StatusReadyToShip: true},
	StatusReadyToShip:           {StatusShipped: true},
	StatusShipped:               {StatusDelivered: true},
	StatusDelivered:             {},
	StatusCancelled:             {},
}

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusAwaitingAdminCost,
		StatusAwaitingUserApproval,
		StatusAwaitingPayment,
		StatusPaymentConfirmPending,
		StatusReadyToShip,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
	}
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(validNext[s]) == 0
}

// UnmarshalText refuses unknown values so a tampered snapshot cannot smuggle
// a status outside the lifecycle into the store.
func (s *Status) UnmarshalText(b []byte) error {
	v := Status(b)
	if !v.Valid() {
		return fmt.Errorf("unknown order status %q, want one of %v", string(b), Statuses())
	}
	*s = v
	return nil
}

// Transition names the operations that move an order between statuses.
type Transition string

const (
	TransitionSubmitCost             Transition = "submit-cost"
	TransitionApprove                Transition = "approve"
	TransitionReject                 Transition = "reject"
	TransitionDeclarePaymentSent     Transition = "declare-payment-sent"
	TransitionConfirmPaymentReceived Transition = "confirm-payment-received"
	TransitionMarkShipped            Transition = "mark-shipped"
	TransitionConfirmReceived        Transition = "confirm-received"
)

type rule struct {
	from  Status
	actor Role
}

var rules = map[Transition]rule{
	TransitionSubmitCost:             {from: StatusAwaitingAdminCost, actor: RoleAdmin},
	TransitionApprove:                {from: StatusAwaitingUserApproval, actor: RoleCustomer},
	TransitionReject:                 {from: StatusAwaitingUserApproval, actor: RoleCustomer},
	TransitionDeclarePaymentSent:     {from: StatusAwaitingPayment, actor: RoleCustomer},
	TransitionConfirmPaymentReceived: {from: StatusPaymentConfirmPending, actor: RoleAdmin},
	TransitionMarkShipped:            {from: StatusReadyToShip, actor: RoleAdmin},
	TransitionConfirmReceived:        {from: StatusShipped, actor: RoleCustomer},
}

// Transitions lists every transition in lifecycle order.
func Transitions() []Transition {
	return []Transition{
		TransitionSubmitCost,
		TransitionApprove,
		TransitionReject,
		TransitionDeclarePaymentSent,
		TransitionConfirmPaymentReceived,
		TransitionMarkShipped,
		TransitionConfirmReceived,
	}
}

func (t Transition) Valid() bool {
	_, ok := rules[t]
	return ok
}

// From is the status an order must be in for t to apply.
func (t Transition) From() Status { return rules[t].from }

// Actor is the role allowed to trigger t.
func (t Transition) Actor() Role { return rules[t].actor }

// target resolves the destination status. Approve depends on how the
// customer chose to pay.
func (t Transition) target(o Order) Status {
	switch t {
	case TransitionSubmitCost:
		return StatusAwaitingUserApproval
	case TransitionApprove:
		if o.PaymentMethod.Prepaid() {
			return StatusAwaitingPayment
		}
		return StatusReadyToShip
	case TransitionReject:
		return StatusCancelled
	case TransitionDeclarePaymentSent:
		return StatusPaymentConfirmPending
	case TransitionConfirmPaymentReceived:
		return StatusReadyToShip
	case TransitionMarkShipped:
		return StatusShipped
	case TransitionConfirmReceived:
		return StatusDelivered
	}
	return ""
}

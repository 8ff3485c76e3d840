package enums

// OrderState tracks the order lifecycle. Only basket -> new is driven by this
// service; the fulfillment states are set by back-office tooling.
type OrderState string

const (
	OrderStateBasket    OrderState = "basket"
	OrderStateNew       OrderState = "new"
	OrderStateConfirmed OrderState = "confirmed"
	OrderStateAssembled OrderState = "assembled"
	OrderStateSent      OrderState = "sent"
	OrderStateDelivered OrderState = "delivered"
	OrderStateCanceled  OrderState = "canceled"
)

func (s OrderState) IsValid() bool {
	switch s {
	case OrderStateBasket, OrderStateNew, OrderStateConfirmed,
		OrderStateAssembled, OrderStateSent, OrderStateDelivered, OrderStateCanceled:
		return true
	}
	return false
}

func (s OrderState) String() string {
	return string(s)
}

package orders

// Summary is the admin dashboard headline.
type Summary struct {
	TotalSales   int `json:"totalSales"`   // grand total of delivered orders
	ActiveOrders int `json:"activeOrders"` // neither delivered nor cancelled
	PendingAdmin int `json:"pendingAdmin"` // orders waiting on an admin action
	Customers    int `json:"customers"`
}

func Summarize(list []Order, customers int) Summary {
	s := Summary{Customers: customers}
	for _, o := range list {
		if o.Status == StatusDelivered && o.Cost != nil {
			s.TotalSales += o.Cost.GrandTotal
		}
		if o.Status.Terminal() {
			continue
		}
		if o.Status == StatusAwaitingAdminCost || o.Status == StatusPaymentConfirmPending {
			s.PendingAdmin++
		}
		s.ActiveOrders++
	}
	return s
}

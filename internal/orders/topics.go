package orders

const (
	TopicOrderPlaced        = "watch.order.placed"
	TopicOrderStatusChanged = "watch.order.status"
	TopicOrderShipped       = "watch.order.shipped"
)

// Partition key = order id, so every event of one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }

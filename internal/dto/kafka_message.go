package dto

import "strconv"

const (
	EventProductDeleted = "product_deleted"
)

type KafkaMessage struct {
	EventID   string      `json:"event_id"`
	EventType string      `json:"event_type"`
	Data      interface{} `json:"data"`
}

type ProductDeleted struct {
	ProductID int64 `json:"product_id"`
}

// EventKey keeps every event of one product on the same partition.
func (e ProductDeleted) EventKey() string {
	return strconv.FormatInt(e.ProductID, 10)
}

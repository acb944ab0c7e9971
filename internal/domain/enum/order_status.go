package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// OrderStatus is the fulfilment state of a wholesale order shown on the dashboard
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusConfirmed OrderStatus = "confirmed"
	OrderStatusPacked    OrderStatus = "packed"
	OrderStatusInTransit OrderStatus = "in_transit"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// PendingDeliveryStatuses are the states counted as awaiting delivery
var PendingDeliveryStatuses = []OrderStatus{
	OrderStatusConfirmed,
	OrderStatusPacked,
	OrderStatusInTransit,
}

func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether s is a known status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusPacked,
		OrderStatusInTransit, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// IsPendingDelivery reports whether the order still counts as an open delivery
func (s OrderStatus) IsPendingDelivery() bool {
	for _, p := range PendingDeliveryStatuses {
		if s == p {
			return true
		}
	}
	return false
}

func (s *OrderStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	status := OrderStatus(str)
	if !status.IsValid() {
		return fmt.Errorf("unknown order status %q", str)
	}
	*s = status
	return nil
}

func (s OrderStatus) Value() (driver.Value, error) {
	return string(s), nil
}

func (s *OrderStatus) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = OrderStatusPending
	case string:
		*s = OrderStatus(v)
	case []byte:
		*s = OrderStatus(v)
	default:
		return fmt.Errorf("cannot scan %T into OrderStatus", value)
	}
	return nil
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Order struct {
	ID              string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	CustomerID      string          `gorm:"column:customer_id;type:uuid;not null;index" json:"customer_id"`
	Customer        *User           `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	TotalAmount     decimal.Decimal `gorm:"column:total_amount;type:numeric(12,2);not null;default:0" json:"total_amount"`
	Status          OrderStatus     `gorm:"column:status;type:varchar(20);not null;default:'pending';index" json:"status"`
	PaymentIntentID string          `gorm:"column:payment_intent_id;type:varchar(128)" json:"payment_intent_id,omitempty"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	ID          string          `gorm:"column:id;type:uuid;primary_key" json:"id"`
	OrderID     string          `gorm:"column:order_id;type:uuid;not null;index" json:"order_id"`
	Order       *Order          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
	AttributeID string          `gorm:"column:attribute_id;type:uuid;not null;index" json:"attribute_id"`
	Attribute   *Attribute      `gorm:"foreignKey:AttributeID;constraint:OnDelete:RESTRICT" json:"-"`
	Quantity    int64           `gorm:"column:quantity;not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null" json:"unit_price"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string { return "order_item" }

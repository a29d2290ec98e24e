package models

import (
	"time"

	"gorm.io/datatypes"
)

type BillingEventLogStatus string

const (
	BillingEventLogStatusReceived     BillingEventLogStatus = "received"
	BillingEventLogStatusHandled      BillingEventLogStatus = "handled"
	BillingEventLogStatusHandleFailed BillingEventLogStatus = "handle_failed"
)

// BillingEventLog records every billing provider webhook delivery and its outcome.
type BillingEventLog struct {
	ID             string                `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Provider       string                `gorm:"column:provider;type:varchar(64);not null" json:"provider"`
	EventID        string                `gorm:"column:event_id;type:varchar(128);index" json:"event_id"`
	EventType      string                `gorm:"column:event_type;type:varchar(128)" json:"event_type"`
	UserID         *string               `gorm:"column:user_id;type:varchar(64)" json:"user_id"`
	TraceID        string                `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	SubscriptionID string                `gorm:"column:subscription_id;type:varchar(128)" json:"subscription_id"`
	EventTime      time.Time             `gorm:"column:event_time" json:"event_time"`
	Data           datatypes.JSON        `gorm:"column:data;type:jsonb" json:"data"`
	Result         *datatypes.JSON       `gorm:"column:result;type:jsonb" json:"result"`
	Status         BillingEventLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

func (BillingEventLog) TableName() string { return "billing_event_log" }

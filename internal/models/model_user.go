package models

import "time"

// User is an account. IsStaff marks editors, IsSuperuser marks site admins.
type User struct {
	ID           string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Email        string    `gorm:"column:email;type:varchar(254);not null;uniqueIndex" json:"email"`
	Username     string    `gorm:"column:username;type:varchar(150);not null;uniqueIndex" json:"username"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"column:first_name;type:varchar(150)" json:"first_name"`
	LastName     string    `gorm:"column:last_name;type:varchar(150)" json:"last_name"`
	Picture      string    `gorm:"column:picture;type:varchar(512)" json:"picture"`
	Address      string    `gorm:"column:address;type:varchar(512)" json:"address"`
	Phone        string    `gorm:"column:phone;type:varchar(32)" json:"phone"`
	IsStaff      bool      `gorm:"column:is_staff;not null;default:false" json:"is_staff"`
	IsSuperuser  bool      `gorm:"column:is_superuser;not null;default:false" json:"is_superuser"`
	IsActive     bool      `gorm:"column:is_active;not null" json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (User) TableName() string { return "users" }

// PremiumUser links a user to its billing customer and subscription.
// HasActiveSubscription is the last known state; the provider is authoritative.
type PremiumUser struct {
	ID                    string    `gorm:"column:id;type:uuid;primary_key" json:"id"`
	UserID                string    `gorm:"column:user_id;type:uuid;not null;uniqueIndex" json:"user_id"`
	StripeCustomerID      string    `gorm:"column:stripe_customer_id;type:varchar(128);not null;index" json:"stripe_customer_id"`
	StripeSubscriptionID  string    `gorm:"column:stripe_subscription_id;type:varchar(128);not null;index" json:"stripe_subscription_id"`
	HasActiveSubscription bool      `gorm:"column:has_active_subscription;not null;default:false" json:"has_active_subscription"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (PremiumUser) TableName() string { return "premium_user" }

package models

// All lists every persisted model in migration order.
func All() []any {
	return []any{
		&User{},
		&PremiumUser{},
		&Category{},
		&Tag{},
		&Post{},
		&PostHistory{},
		&PostEngagement{},
		&Comment{},
		&Like{},
		&Notification{},
		&Subscriber{},
		&BillingEventLog{},
		&ProductCategory{},
		&Color{},
		&Product{},
		&Attribute{},
		&Image{},
		&Order{},
		&OrderItem{},
	}
}

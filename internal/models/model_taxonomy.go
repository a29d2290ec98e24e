package models

type Category struct {
	ID    string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Title string `gorm:"column:title;type:varchar(100);not null;uniqueIndex" json:"title"`
}

func (Category) TableName() string { return "category" }

type Tag struct {
	ID    string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Title string `gorm:"column:title;type:varchar(100);not null;uniqueIndex" json:"title"`
}

func (Tag) TableName() string { return "tag" }

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory struct {
	ID   string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name string `gorm:"column:name;type:varchar(100);not null" json:"name"`
}

func (ProductCategory) TableName() string { return "product_category" }

type Color struct {
	ID   string `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name string `gorm:"column:name;type:varchar(50);not null" json:"name"`
}

func (Color) TableName() string { return "color" }

type Product struct {
	ID          string           `gorm:"column:id;type:uuid;primary_key" json:"id"`
	Name        string           `gorm:"column:name;type:varchar(200);not null" json:"name"`
	Price       decimal.Decimal  `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	CategoryID  string           `gorm:"column:category_id;type:uuid;not null;index" json:"category_id"`
	Category    *ProductCategory `gorm:"foreignKey:CategoryID;constraint:OnDelete:RESTRICT" json:"category,omitempty"`
	Description string           `gorm:"column:description;type:varchar(1000)" json:"description"`
	Details     string           `gorm:"column:details;type:varchar(2000);not null" json:"details"`
	ColorID     string           `gorm:"column:color_id;type:uuid;not null;index" json:"color_id"`
	Color       *Color           `gorm:"foreignKey:ColorID;constraint:OnDelete:RESTRICT" json:"color,omitempty"`
	Slug        string           `gorm:"column:slug;type:varchar(255);not null;uniqueIndex" json:"slug"`
	Attributes  []Attribute      `gorm:"foreignKey:ProductID" json:"attributes,omitempty"`
	Images      []Image          `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func (Product) TableName() string { return "product" }

type AttributeName string

const (
	AttributeNameSize       AttributeName = "Size"
	AttributeNamePhoneModel AttributeName = "Phone Model"
)

func (n AttributeName) Valid() bool {
	return n == AttributeNameSize || n == AttributeNamePhoneModel
}

// Attribute is a stock keeping unit of a product.
type Attribute struct {
	ID            string        `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProductID     string        `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Product       *Product      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	Name          AttributeName `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Value         string        `gorm:"column:attribute_value;type:varchar(255);not null" json:"attribute_value"`
	StockQuantity int64         `gorm:"column:stock_quantity;not null;default:0;check:stock_quantity >= 0" json:"stock_quantity"`
}

func (Attribute) TableName() string { return "attribute" }

type Image struct {
	ID        string   `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProductID string   `gorm:"column:product_id;type:uuid;not null;index" json:"product_id"`
	Product   *Product `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"-"`
	URL       string   `gorm:"column:url;type:varchar(512);not null" json:"url"`
}

func (Image) TableName() string { return "image" }

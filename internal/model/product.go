package model

import "github.com/shopspring/decimal"

// ProductType groups products, e.g. savory or sweet pastries
type ProductType struct {
	Record
	Name string `json:"name" gorm:"type:varchar(100);not null"`
}

// ProductTypeFields carries product type field values
type ProductTypeFields struct {
	Name *string `json:"name" validate:"omitempty,max=100"`
}

// Apply merges the supplied fields into pt
func (f ProductTypeFields) Apply(pt *ProductType) {
	setString(&pt.Name, f.Name)
}

// Product represents a sellable item
type Product struct {
	Record
	Name          string          `json:"name" gorm:"type:varchar(255);not null"`
	Price         decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	Photo         string          `json:"photo" gorm:"type:varchar(255)"`
	ProductTypeID uint            `json:"product_type_id" gorm:"index;not null"`
}

// ProductFields carries product field values. Photo holds either a base64
// payload to ingest or a reference the image store already owns.
type ProductFields struct {
	Name          *string          `json:"name" validate:"omitempty,max=255"`
	Price         *decimal.Decimal `json:"price" validate:"omitempty,lte=99999999.99"`
	Photo         *string          `json:"photo"`
	ProductTypeID *uint            `json:"product_type_id"`
}

// Apply merges the supplied fields into p
func (f ProductFields) Apply(p *Product) {
	setString(&p.Name, f.Name)
	setString(&p.Photo, f.Photo)
	if f.Price != nil {
		p.Price = *f.Price
	}
	if f.ProductTypeID != nil {
		p.ProductTypeID = *f.ProductTypeID
	}
}

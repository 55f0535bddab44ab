package handler

import (
	"pastelaria-service/internal/model"
	"pastelaria-service/internal/repository"
)

// ProductTypeHandler serves /api/product-types
type ProductTypeHandler = ResourceHandler[model.ProductType, model.ProductTypeFields]

// NewProductTypeHandler creates the product type handler
func NewProductTypeHandler(repo Store[model.ProductType, model.ProductTypeFields]) *ProductTypeHandler {
	return &ProductTypeHandler{
		store: repo,
		check: func(in model.ProductTypeFields, creating bool) map[string]string {
			problems := map[string]string{}
			requireText(problems, "name", in.Name, creating)
			return problems
		},
	}
}

var _ Store[model.ProductType, model.ProductTypeFields] = (*repository.ProductTypeRepository)(nil)

package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"pastelaria-service/internal/model"
	"pastelaria-service/internal/repository"
)

// ProductHandler serves /api/products
type ProductHandler = ResourceHandler[model.Product, model.ProductFields]

// NewProductHandler creates the product handler. The list accepts an
// optional product_type_id query parameter.
func NewProductHandler(repo Store[model.Product, model.ProductFields]) *ProductHandler {
	return &ProductHandler{
		store:   repo,
		check:   checkProduct,
		filters: productFilters,
	}
}

var _ Store[model.Product, model.ProductFields] = (*repository.ProductRepository)(nil)

const priceScale = 2

func checkProduct(in model.ProductFields, creating bool) map[string]string {
	problems := map[string]string{}
	requireText(problems, "name", in.Name, creating)

	switch {
	case in.Price == nil:
		if creating {
			problems["price"] = "is required"
		}
	case !in.Price.IsPositive():
		problems["price"] = "must be greater than 0"
	case !in.Price.Equal(in.Price.Round(priceScale)):
		// the column is decimal(10,2) and would round silently
		problems["price"] = "must have at most 2 decimal places"
	}

	switch {
	case in.ProductTypeID == nil:
		if creating {
			problems["product_type_id"] = "is required"
		}
	case *in.ProductTypeID == 0:
		problems["product_type_id"] = "is invalid"
	}

	return problems
}

func productFilters(c echo.Context) ([]repository.Filter, error) {
	raw := c.QueryParam("product_type_id")
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil {
		return nil, fmt.Errorf("invalid product_type_id %q", raw)
	}
	return []repository.Filter{repository.ByProductType(uint(id))}, nil
}

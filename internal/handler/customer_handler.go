package handler

import (
	"strings"

	"pastelaria-service/internal/model"
	"pastelaria-service/internal/repository"
)

// CustomerHandler serves /api/customers
type CustomerHandler = ResourceHandler[model.Customer, model.CustomerFields]

// NewCustomerHandler creates the customer handler
func NewCustomerHandler(repo Store[model.Customer, model.CustomerFields]) *CustomerHandler {
	return &CustomerHandler{
		store: repo,
		check: func(in model.CustomerFields, creating bool) map[string]string {
			problems := map[string]string{}
			requireText(problems, "name", in.Name, creating)
			return problems
		},
	}
}

var _ Store[model.Customer, model.CustomerFields] = (*repository.CustomerRepository)(nil)

// requireText rejects a blank value, and a missing one when required
func requireText(problems map[string]string, field string, v *string, required bool) {
	if v == nil {
		if required {
			problems[field] = "is required"
		}
		return
	}
	if strings.TrimSpace(*v) == "" {
		problems[field] = "must not be blank"
	}
}

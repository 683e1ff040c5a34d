package schema

import "github.com/jigardalal/databridge/internal/model"

// builtinCategories are the target schemas shipped with the service. A YAML
// schema file can replace any of these wholesale at startup.
func builtinCategories() map[string][]model.TargetField {
	return map[string][]model.TargetField{
		"customers": {
			{Name: "id", Type: model.FieldTypeString, Required: true, Description: "Unique customer identifier"},
			{Name: "name", Type: model.FieldTypeString, Required: true, Description: "Customer full name or company name"},
			{Name: "email", Type: model.FieldTypeString, Required: true, Description: "Primary contact email address"},
			{Name: "phone", Type: model.FieldTypeString, Required: false, Description: "Contact phone number"},
			{Name: "address", Type: model.FieldTypeString, Required: false, Description: "Street address"},
			{Name: "city", Type: model.FieldTypeString, Required: false, Description: "City"},
			{Name: "state", Type: model.FieldTypeString, Required: false, Description: "State or province"},
			{Name: "zip", Type: model.FieldTypeString, Required: false, Description: "Postal code"},
			{Name: "created_date", Type: model.FieldTypeDate, Required: false, Description: "Date the customer record was created"},
		},
		"drivers": {
			{Name: "id", Type: model.FieldTypeString, Required: true, Description: "Unique driver identifier"},
			{Name: "name", Type: model.FieldTypeString, Required: true, Description: "Driver full name"},
			{Name: "license_number", Type: model.FieldTypeString, Required: true, Description: "Driver license number"},
			{Name: "license_expiry", Type: model.FieldTypeDate, Required: false, Description: "License expiration date"},
			{Name: "phone", Type: model.FieldTypeString, Required: false, Description: "Contact phone number"},
			{Name: "email", Type: model.FieldTypeString, Required: false, Description: "Contact email address"},
			{Name: "active", Type: model.FieldTypeBoolean, Required: false, Description: "Whether the driver is currently active"},
		},
		"rates": {
			{Name: "id", Type: model.FieldTypeString, Required: true, Description: "Unique rate identifier"},
			{Name: "origin", Type: model.FieldTypeString, Required: true, Description: "Origin location or zone"},
			{Name: "destination", Type: model.FieldTypeString, Required: true, Description: "Destination location or zone"},
			{Name: "rate", Type: model.FieldTypeNumber, Required: true, Description: "Rate amount"},
			{Name: "currency", Type: model.FieldTypeString, Required: false, Description: "ISO currency code"},
			{Name: "effective_date", Type: model.FieldTypeDate, Required: false, Description: "Date the rate becomes effective"},
		},
		"orders": {
			{Name: "id", Type: model.FieldTypeString, Required: true, Description: "Unique order identifier"},
			{Name: "customer_id", Type: model.FieldTypeString, Required: true, Description: "Identifier of the ordering customer"},
			{Name: "order_date", Type: model.FieldTypeDate, Required: true, Description: "Date the order was placed"},
			{Name: "total", Type: model.FieldTypeNumber, Required: true, Description: "Order total amount"},
			{Name: "status", Type: model.FieldTypeString, Required: false, Description: "Order status"},
			{Name: "notes", Type: model.FieldTypeString, Required: false, Description: "Free-form order notes"},
		},
	}
}

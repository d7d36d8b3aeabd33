package magento

import (
	"github.com/architeacher/connectors/internal/domain/model"
)

type (
	address struct {
		City            *string  `json:"city,omitempty"`
		Company         *string  `json:"company,omitempty"`
		CountryID       *string  `json:"country_id,omitempty"`
		DefaultBilling  *bool    `json:"default_billing,omitempty"`
		DefaultShipping *bool    `json:"default_shipping,omitempty"`
		Fax             *string  `json:"fax,omitempty"`
		Firstname       *string  `json:"firstname,omitempty"`
		Lastname        *string  `json:"lastname,omitempty"`
		Middlename      *string  `json:"middlename,omitempty"`
		Postcode        *string  `json:"postcode,omitempty"`
		Prefix          *string  `json:"prefix,omitempty"`
		Region          *region  `json:"region,omitempty"`
		Street          []string `json:"street,omitempty"`
		Suffix          *string  `json:"suffix,omitempty"`
		Telephone       *string  `json:"telephone,omitempty"`
	}

	region struct {
		Region string `json:"region"`
	}

	customAttribute struct {
		AttributeCode string `json:"attribute_code"`
		Value         any    `json:"value"`
	}

	customerExtension struct {
		AmazonID              *string `json:"amazon_id,omitempty"`
		IsSubscribed          *bool   `json:"is_subscribed,omitempty"`
		VertexCustomerCode    *string `json:"vertex_customer_code,omitempty"`
		VertexCustomerCountry *string `json:"vertex_customer_country,omitempty"`
	}

	customer struct {
		Email               *string            `json:"email,omitempty"`
		Firstname           *string            `json:"firstname,omitempty"`
		Lastname            *string            `json:"lastname,omitempty"`
		Addresses           *[]address         `json:"addresses,omitempty"`
		CustomAttributes    any                `json:"custom_attributes,omitempty"`
		ExtensionAttributes *customerExtension `json:"extension_attributes,omitempty"`
		Confirmation        *string            `json:"confirmation,omitempty"`
		Dob                 *string            `json:"dob,omitempty"`
		DefaultBilling      *string            `json:"default_billing,omitempty"`
		DefaultShipping     *string            `json:"default_shipping,omitempty"`
		Gender              *int               `json:"gender,omitempty"`
		GroupID             *int               `json:"group_id,omitempty"`
		Middlename          *string            `json:"middlename,omitempty"`
		Prefix              *string            `json:"prefix,omitempty"`
		StoreID             *int               `json:"store_id,omitempty"`
		Suffix              *string            `json:"suffix,omitempty"`
		Taxvat              *string            `json:"taxvat,omitempty"`
		WebsiteID           *int               `json:"website_id,omitempty"`
	}

	customerRequest struct {
		Customer customer `json:"customer"`
		Password *string  `json:"password,omitempty"`
	}

	categoryLink struct {
		Position   int    `json:"position"`
		CategoryID string `json:"category_id"`
	}

	productExtension struct {
		CategoryLinks []categoryLink `json:"category_links"`
	}

	product struct {
		SKU                 string            `json:"sku"`
		AttributeSetID      *int              `json:"attribute_set_id,omitempty"`
		Name                *string           `json:"name,omitempty"`
		Price               *float64          `json:"price,omitempty"`
		Status              *int              `json:"status,omitempty"`
		TypeID              *string           `json:"type_id,omitempty"`
		Visibility          *int              `json:"visibility,omitempty"`
		Weight              *float64          `json:"weight,omitempty"`
		CustomAttributes    any               `json:"custom_attributes,omitempty"`
		ExtensionAttributes *productExtension `json:"extension_attributes,omitempty"`
	}

	productRequest struct {
		Product product `json:"product"`
	}
)

// customAttributes returns the entered attributes, or nil when the field is
// absent.
func customAttributes(fields model.Params) []customAttribute {
	if !fields.Has("customAttributes") {
		return nil
	}

	entries := fields.Group("customAttributes", "customAttribute")
	attributes := make([]customAttribute, 0, len(entries))

	for _, entry := range entries {
		code, _ := entry.String("attribute_code")
		attributes = append(attributes, customAttribute{AttributeCode: code, Value: entry["value"]})
	}

	return attributes
}

// createCustomAttributes is what a create sends: the attribute list, or an
// empty object when none were entered.
func createCustomAttributes(fields model.Params) any {
	if attributes := customAttributes(fields); len(attributes) > 0 {
		return attributes
	}

	return map[string]any{}
}

// updateCustomAttributes only sends attributes the caller supplied.
func updateCustomAttributes(fields model.Params) any {
	if attributes := customAttributes(fields); attributes != nil {
		return attributes
	}

	return nil
}

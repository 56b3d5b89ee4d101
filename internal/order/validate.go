package order

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ValidationError names the first request field that failed a rule.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// flexNumber decodes a JSON number or a numeric string; anything else
// coerces to zero so that malformed input fails validation instead of
// failing the decode.
type flexNumber float64

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	*n = 0
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case float64:
		*n = flexNumber(t)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			*n = flexNumber(f)
		}
	}
	return nil
}

// flexString accepts a JSON string, number or bool and coerces it to a
// string, defaulting to empty.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	*s = ""
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil
	}
	switch t := v.(type) {
	case string:
		*s = flexString(t)
	case float64:
		*s = flexString(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		*s = flexString(strconv.FormatBool(t))
	}
	return nil
}

// CreateRequest is the untrusted order payload as submitted by the
// storefront checkout form.
type CreateRequest struct {
	ProductID   string     `json:"productId"`
	ProductName string     `json:"productName"`
	ProductLink flexString `json:"productLink"`
	Size        flexString `json:"size"`
	Name        string     `json:"name"`
	Phone       flexString `json:"phone"`
	Address     string     `json:"address"`
	Qty         flexNumber `json:"qty"`
	UnitPrice   flexNumber `json:"unitPrice"`
	Area        string     `json:"area"`
}

// Validate applies the request rules in order and returns an Order with
// the derived fields computed. Identity, timestamp and status are left
// for the service to fill in.
func (r CreateRequest) Validate() (Order, error) {
	productID := strings.TrimSpace(r.ProductID)
	if productID == "" {
		return Order{}, invalid("productId", "Missing productId")
	}
	productName := strings.TrimSpace(r.ProductName)
	if productName == "" {
		return Order{}, invalid("productName", "Missing productName")
	}
	name := strings.TrimSpace(r.Name)
	if name == "" {
		return Order{}, invalid("name", "Missing name")
	}
	phone := strings.TrimSpace(string(r.Phone))
	if phone == "" {
		return Order{}, invalid("phone", "Missing phone")
	}
	address := strings.TrimSpace(r.Address)
	if address == "" {
		return Order{}, invalid("address", "Missing address")
	}

	qty := float64(r.Qty)
	if qty == 0 || math.IsNaN(qty) {
		qty = 1
	}
	if qty < 1 || math.IsInf(qty, 0) {
		return Order{}, invalid("qty", "Invalid qty")
	}

	price := float64(r.UnitPrice)
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return Order{}, invalid("unitPrice", "Invalid unitPrice")
	}

	var area string
	switch strings.ToLower(strings.TrimSpace(r.Area)) {
	case AreaDhaka:
		area = AreaDhaka
	case AreaOutside, "outside dhaka":
		area = AreaOutside
	default:
		return Order{}, invalid("area", "Invalid area")
	}

	shipping := float64(ShippingOutside)
	if area == AreaDhaka {
		shipping = ShippingDhaka
	}

	n := int(qty)
	return Order{
		ProductID:   productID,
		ProductName: productName,
		ProductLink: string(r.ProductLink),
		Size:        string(r.Size),
		UnitPrice:   price,
		Qty:         n,
		Area:        area,
		Shipping:    shipping,
		Total:       float64(n)*price + shipping,
		Customer: Customer{
			Name:    name,
			Phone:   phone,
			Address: address,
		},
	}, nil
}

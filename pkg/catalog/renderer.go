package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// DefaultRenderer renders raw product data the way a storefront does for the
// common input types: select values become option labels and booleans become
// Yes or No. Other inputs return the raw value unchanged.
type DefaultRenderer struct{}

// Render implements FrontendRenderer.
func (DefaultRenderer) Render(_ context.Context, attr Attribute, product Product) (any, error) {
	raw, ok := product.Value(attr.Code)
	if !ok || raw == nil {
		return nil, nil
	}

	switch attr.FrontendInput {
	case InputSelect:
		value := fmt.Sprint(raw)
		if value == "" {
			return nil, nil
		}
		for _, opt := range attr.Options {
			if opt.Value == value {
				return opt.Label, nil
			}
		}
		return "", nil
	case InputBoolean:
		set, err := Truthy(raw)
		if err != nil {
			// unreadable values are shown as stored
			return fmt.Sprint(raw), nil
		}
		if set == nil {
			return nil, nil
		}
		if *set {
			return "Yes", nil
		}
		return "No", nil
	}
	return raw, nil
}

// Truthy interprets a raw boolean attribute value. It returns nil for an
// empty value.
func Truthy(raw any) (*bool, error) {
	var b bool
	switch v := raw.(type) {
	case nil:
		return nil, nil
	case bool:
		b = v
	case int:
		b = v != 0
	case int64:
		b = v != 0
	case float64:
		b = v != 0
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil, nil
		}
		parsed, err := strconv.ParseBool(s)
		if err != nil {
			return nil, fmt.Errorf("not a boolean: %q", v)
		}
		b = parsed
	default:
		return nil, fmt.Errorf("not a boolean: %T", raw)
	}
	return &b, nil
}

var _ FrontendRenderer = DefaultRenderer{}

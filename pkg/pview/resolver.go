package pview

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// AttributeValueResolver resolves the display value of one attribute for one
// product.
type AttributeValueResolver struct {
	renderer catalog.FrontendRenderer
	currency catalog.CurrencyFormatter
}

// NewAttributeValueResolver creates a resolver. A nil renderer falls back to
// catalog.DefaultRenderer. A nil currency formatter leaves prices as rendered.
func NewAttributeValueResolver(renderer catalog.FrontendRenderer, currency catalog.CurrencyFormatter) *AttributeValueResolver {
	if renderer == nil {
		renderer = catalog.DefaultRenderer{}
	}
	return &AttributeValueResolver{renderer: renderer, currency: currency}
}

// FrontendValue returns the trimmed display value and whether the attribute
// has a value for the product.
//
// Boolean attributes are decided by the raw stored value: a missing, nil or
// empty raw value means no value even when the renderer produced text, and
// any other raw value counts as a value.
func (r *AttributeValueResolver) FrontendValue(ctx context.Context, attr catalog.Attribute, product catalog.Product) (string, bool, error) {
	rendered, err := r.renderer.Render(ctx, attr, product)
	if err != nil {
		return "", false, fmt.Errorf("render attribute %s: %w", attr.Code, err)
	}

	if attr.FrontendInput == catalog.InputBoolean {
		return resolveBoolean(rendered, product.Data[attr.Code])
	}
	if rendered == nil {
		return "", false, nil
	}

	value := toDisplayString(rendered)
	if attr.FrontendInput == catalog.InputPrice && r.currency != nil {
		if amount, ok := parseNumeric(value); ok {
			value = r.currency.Format(ctx, amount, product.StoreID)
		}
	}

	value = strings.TrimSpace(value)
	return value, value != "", nil
}

func resolveBoolean(rendered, raw any) (string, bool, error) {
	if raw == nil {
		return "", false, nil
	}
	if s, ok := raw.(string); ok && s == "" {
		return "", false, nil
	}

	var value string
	if rendered != nil {
		value = strings.TrimSpace(toDisplayString(rendered))
	}
	if value != "" {
		return value, true, nil
	}

	set, err := catalog.Truthy(raw)
	if err != nil || set == nil {
		// Defined but unreadable raw values still count as set.
		return "No", true, nil
	}
	if *set {
		return "Yes", true, nil
	}
	return "No", true, nil
}

// toDisplayString normalizes a rendered value: strings and Stringers pass
// through, false becomes empty and everything else is formatted with fmt.
func toDisplayString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool:
		if !t {
			return ""
		}
		return "1"
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	default:
		return fmt.Sprint(v)
	}
}

func parseNumeric(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

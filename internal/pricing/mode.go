package pricing

import (
	"dropship-pricing-service/internal/models"

	"github.com/shopspring/decimal"
)

// ModeKind names a pricing mode on the wire
type ModeKind string

const (
	ModeInherited  ModeKind = "inherit"
	ModeMargin     ModeKind = "margin"
	ModeFixedPrice ModeKind = "price"
)

// Mode is how a seller prices one product. The implementations are
// Inherited, Margin and FixedPrice; no other type satisfies Mode.
type Mode interface {
	Kind() ModeKind
	mode()
}

// Inherited uses the category margin, falling back to the global default
type Inherited struct{}

// Margin applies a seller-chosen margin percentage
type Margin struct {
	Percent decimal.Decimal
}

// FixedPrice uses a seller-chosen price verbatim
type FixedPrice struct {
	Price decimal.Decimal
}

func (Inherited) Kind() ModeKind  { return ModeInherited }
func (Margin) Kind() ModeKind     { return ModeMargin }
func (FixedPrice) Kind() ModeKind { return ModeFixedPrice }

func (Inherited) mode()  {}
func (Margin) mode()     {}
func (FixedPrice) mode() {}

// ModeOf reads the pricing mode stored on an override. A nil override is Inherited.
// CustomPrice wins over CustomMargin if both columns were ever set.
func ModeOf(o *models.SellerProductOverride) Mode {
	switch {
	case o == nil:
		return Inherited{}
	case o.CustomPrice != nil:
		return FixedPrice{Price: *o.CustomPrice}
	case o.CustomMargin != nil:
		return Margin{Percent: *o.CustomMargin}
	default:
		return Inherited{}
	}
}

// SetMode stores m on o, clearing the column of the other mode
func SetMode(o *models.SellerProductOverride, m Mode) {
	switch v := m.(type) {
	case Margin:
		percent := v.Percent
		o.CustomMargin = &percent
		o.CustomPrice = nil
	case FixedPrice:
		price := v.Price
		o.CustomPrice = &price
		o.CustomMargin = nil
	default:
		o.CustomMargin = nil
		o.CustomPrice = nil
	}
}

// ParseMode builds a Mode from its wire name and value
func ParseMode(kind string, value *decimal.Decimal) (Mode, error) {
	switch ModeKind(kind) {
	case ModeInherited:
		return Inherited{}, nil
	case ModeMargin:
		if value == nil {
			return nil, NewValidationError("value", "is required for margin mode")
		}
		m := Margin{Percent: *value}
		return m, ValidateMode(m)
	case ModeFixedPrice:
		if value == nil {
			return nil, NewValidationError("value", "is required for price mode")
		}
		m := FixedPrice{Price: *value}
		return m, ValidateMode(m)
	default:
		return nil, NewValidationError("mode", "must be one of inherit, margin, price")
	}
}

// ValidateMode checks the value carried by m
func ValidateMode(m Mode) error {
	switch v := m.(type) {
	case Margin:
		return ValidateMargin("customMargin", v.Percent)
	case FixedPrice:
		return ValidateAmount("customPrice", v.Price)
	}
	return nil
}

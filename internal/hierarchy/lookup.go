package hierarchy

import (
	"dropship-pricing-service/internal/pricing"
)

// MarginLookup resolves the pricing terms of every indexed category.
// A category with InheritsPricing takes the terms of its nearest ancestor that does not
// inherit; when the chain ends first (missing parent, cycle or root) the global defaults apply.
// A category without its own shipping fee uses the global shipping cost.
func (t *Tree) MarginLookup(settings pricing.Settings) pricing.MarginLookup {
	lookup := make(pricing.MarginLookup, len(t.order))
	for _, id := range t.order {
		lookup[id] = t.resolveTerms(id, settings)
	}
	return lookup
}

func (t *Tree) resolveTerms(id uint, settings pricing.Settings) pricing.CategoryTerms {
	visited := map[uint]bool{}
	for {
		c, ok := t.index[id]
		if !ok || visited[id] {
			break
		}
		visited[id] = true
		if !c.InheritsPricing {
			terms := pricing.CategoryTerms{Margin: c.DefaultMargin, ShippingFee: settings.ShippingCost}
			if c.ShippingFee != nil {
				terms.ShippingFee = *c.ShippingFee
			}
			return terms
		}
		if c.ParentID == nil {
			break
		}
		id = *c.ParentID
	}
	return pricing.CategoryTerms{Margin: settings.DefaultMargin, ShippingFee: settings.ShippingCost}
}

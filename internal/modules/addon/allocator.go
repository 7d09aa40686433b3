// Package addon splits a chosen multiset of add-ons into free and charged
// units according to the principal product's complimentary-item rule.
package addon

import (
	"errors"
	"fmt"

	"github.com/montoanel/deliveryweb-backend/internal/modules/catalog"
)

// ErrInvalidAddonSelection is returned when a selection references a product
// outside the rule's eligible set.
var ErrInvalidAddonSelection = errors.New("addon selection not eligible for this product")

// PriceLookup resolves an add-on product's list price.
type PriceLookup func(productID int64) (float64, error)

// Allocation is the priced outcome for one selected add-on unit.
// ChargedPrice is zero for units absorbed by the free tier.
type Allocation struct {
	ProductID    int64   `json:"product_id"`
	ChargedPrice float64 `json:"charged_price"`
}

// Allocate prices each selected add-on in selection order. The first
// FreeQuantity eligible units are free; always-charged items are billed at
// list price and never consume a free slot. The function is pure, so the UI
// preview and the order commit produce identical results for identical input.
func Allocate(rule *catalog.AddonRule, selections []int64, price PriceLookup) ([]Allocation, error) {
	eligible := make(map[int64]*catalog.AddonRuleItem, len(rule.Items))
	for _, item := range rule.Items {
		eligible[item.AddonProductID] = item
	}

	out := make([]Allocation, 0, len(selections))
	freeUsed := 0
	for _, productID := range selections {
		item, ok := eligible[productID]
		if !ok {
			return nil, fmt.Errorf("product %d: %w", productID, ErrInvalidAddonSelection)
		}
		if !item.AlwaysCharged && freeUsed < rule.FreeQuantity {
			freeUsed++
			out = append(out, Allocation{ProductID: productID})
			continue
		}
		listPrice, err := price(productID)
		if err != nil {
			return nil, err
		}
		out = append(out, Allocation{ProductID: productID, ChargedPrice: listPrice})
	}
	return out, nil
}

// ChargedTotal sums the charged prices of an allocation result.
func ChargedTotal(allocations []Allocation) float64 {
	var total float64
	for _, a := range allocations {
		total += a.ChargedPrice
	}
	return total
}

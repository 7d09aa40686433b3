package addon

import (
	"testing"

	"github.com/montoanel/deliveryweb-backend/internal/modules/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	cheeseID = int64(10)
	baconID  = int64(11)
	truffle  = int64(12) // always charged
)

func testRule(freeQuantity int) *catalog.AddonRule {
	return &catalog.AddonRule{
		ID:           1,
		ProductID:    1,
		FreeQuantity: freeQuantity,
		Items: []*catalog.AddonRuleItem{
			{AddonProductID: cheeseID},
			{AddonProductID: baconID},
			{AddonProductID: truffle, AlwaysCharged: true},
		},
	}
}

func testPrices(productID int64) (float64, error) {
	switch productID {
	case cheeseID:
		return 2.50, nil
	case baconID:
		return 4.00, nil
	case truffle:
		return 9.00, nil
	}
	return 0, catalog.ErrProductNotFound
}

func TestAllocate_FreeTierBoundary(t *testing.T) {
	// N=3, four units of the same addon: first three free, fourth charged.
	rule := testRule(3)
	got, err := Allocate(rule, []int64{cheeseID, cheeseID, cheeseID, cheeseID}, testPrices)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 0.0, got[0].ChargedPrice)
	assert.Equal(t, 0.0, got[1].ChargedPrice)
	assert.Equal(t, 0.0, got[2].ChargedPrice)
	assert.Equal(t, 2.50, got[3].ChargedPrice)
}

func TestAllocate_AlwaysChargedBypassesFreeTier(t *testing.T) {
	// N=2 with a premium item first: it is billed at list price and must not
	// consume a free slot, so two of the three cheeses are still free.
	rule := testRule(2)
	got, err := Allocate(rule, []int64{truffle, cheeseID, cheeseID, cheeseID}, testPrices)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, 9.00, got[0].ChargedPrice)
	assert.Equal(t, 0.0, got[1].ChargedPrice)
	assert.Equal(t, 0.0, got[2].ChargedPrice)
	assert.Equal(t, 2.50, got[3].ChargedPrice)
}

func TestAllocate_SelectionOrderIsTieBreak(t *testing.T) {
	rule := testRule(1)
	got, err := Allocate(rule, []int64{baconID, cheeseID}, testPrices)
	require.NoError(t, err)
	assert.Equal(t, 0.0, got[0].ChargedPrice, "first selected takes the free slot")
	assert.Equal(t, 2.50, got[1].ChargedPrice)
}

func TestAllocate_ZeroFreeQuantity(t *testing.T) {
	rule := testRule(0)
	got, err := Allocate(rule, []int64{cheeseID, baconID}, testPrices)
	require.NoError(t, err)
	assert.Equal(t, 2.50, got[0].ChargedPrice)
	assert.Equal(t, 4.00, got[1].ChargedPrice)
}

func TestAllocate_IneligibleSelection(t *testing.T) {
	rule := testRule(3)
	_, err := Allocate(rule, []int64{cheeseID, 999}, testPrices)
	assert.ErrorIs(t, err, ErrInvalidAddonSelection)
}

func TestAllocate_Deterministic(t *testing.T) {
	rule := testRule(2)
	selections := []int64{cheeseID, truffle, baconID, cheeseID, baconID}
	first, err := Allocate(rule, selections, testPrices)
	require.NoError(t, err)
	second, err := Allocate(rule, selections, testPrices)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestChargedTotal(t *testing.T) {
	rule := testRule(1)
	got, err := Allocate(rule, []int64{cheeseID, baconID, truffle}, testPrices)
	require.NoError(t, err)
	assert.InDelta(t, 13.00, ChargedTotal(got), 0.0001)
}

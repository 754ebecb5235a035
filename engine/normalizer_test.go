package engine

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtn-loyalty-tier3/models"
)

func normalize(t *testing.T, repo *fakeRepo, lines ...models.RawLine) *models.NormalizedBasket {
	t.Helper()
	e := newTestEngine(repo)
	dc := &DecisionContext{
		Request: rewardsRequest("5551234567", "verified", lines...),
		Today:   testDay,
	}
	require.NoError(t, e.normalizeBasket(context.Background(), dc))
	return dc.Basket
}

func TestNormalizeBasketResolvesCatalogFields(t *testing.T) {
	repo := newFakeRepo()
	repo.products = []models.Product{marlboroPack()}

	basket := normalize(t, repo, packLine(1, 1, "7.00"))
	require.Len(t, basket.Lines, 1)

	l := basket.Lines[0]
	assert.Equal(t, "SKU-MARL-GOLD", l.SKUGUID)
	assert.Equal(t, "MARLBORO", l.Brand)
	assert.Equal(t, models.UOMPack, l.UOM)
	assert.False(t, l.IsUnknown)
	assert.True(t, l.BaseExtendedPrice.Equal(d("7.00")))
}

func TestNormalizeBasketCartonBeatsPack(t *testing.T) {
	// The same UPC in a carton column wins over a pack column elsewhere.
	repo := newFakeRepo()
	repo.products = []models.Product{
		{SKUGUID: "SKU-A", SKUName: "A", Brand: "B1", PackUPC: "111"},
		{SKUGUID: "SKU-B", SKUName: "B", Brand: "B2", CartonUPC: "111"},
	}

	basket := normalize(t, repo, models.RawLine{LineNumber: 1, UPC: "111", Quantity: 1, UnitPrice: d("65.00")})
	require.Len(t, basket.Lines, 1)
	assert.Equal(t, "SKU-B", basket.Lines[0].SKUGUID)
	assert.Equal(t, models.UOMCarton, basket.Lines[0].UOM)
}

func TestNormalizeBasketUnknownUPC(t *testing.T) {
	repo := newFakeRepo()

	basket := normalize(t, repo, models.RawLine{LineNumber: 1, UPC: "999999", Quantity: 1, UnitPrice: d("5.49")})
	require.Len(t, basket.Lines, 1)

	l := basket.Lines[0]
	assert.True(t, l.IsUnknown)
	assert.Equal(t, "UNKNOWN_999999", l.SKUGUID)
	assert.Equal(t, models.UnknownTobaccoName, l.SKUName)
	assert.Equal(t, models.UnknownBrand, l.Brand)
	assert.Equal(t, []string{"999999"}, basket.UnknownUPCs)
}

func TestNormalizeBasketDropsLinesWithoutUPC(t *testing.T) {
	repo := newFakeRepo()
	repo.products = []models.Product{marlboroPack()}

	basket := normalize(t, repo,
		models.RawLine{LineNumber: 1, UPC: "", Quantity: 1, UnitPrice: d("7.00")},
		packLine(2, 1, "7.00"),
	)
	assert.Len(t, basket.Lines, 1)
	assert.Equal(t, 1, basket.DroppedCount)
}

func TestNormalizeBasketMergesSameUPCAndPrice(t *testing.T) {
	repo := newFakeRepo()
	repo.products = []models.Product{marlboroPack()}

	basket := normalize(t, repo,
		packLine(1, 1, "7.00"),
		packLine(3, 1, "7.00"),
	)
	require.Len(t, basket.Lines, 1)

	l := basket.Lines[0]
	assert.Equal(t, 2, l.Quantity)
	// First occurrence fixes position and line number.
	assert.Equal(t, 1, l.LineNumber)
	assert.Equal(t, []int{1, 3}, l.SourceLineNumbers)
	assert.Equal(t, 1, basket.MergedCount)
	assert.True(t, l.BaseExtendedPrice.Equal(d("14.00")))
}

func TestNormalizeBasketDifferentPricesDoNotMerge(t *testing.T) {
	repo := newFakeRepo()
	repo.products = []models.Product{marlboroPack()}

	basket := normalize(t, repo,
		packLine(1, 1, "7.00"),
		packLine(2, 1, "6.50"),
	)
	assert.Len(t, basket.Lines, 2)
	assert.Equal(t, 0, basket.MergedCount)
}

func TestNormalizeBasketMergePreservesTotals(t *testing.T) {
	repo := newFakeRepo()
	repo.products = []models.Product{marlboroPack()}

	raw := []models.RawLine{
		packLine(1, 2, "7.00"),
		packLine(2, 1, "6.50"),
		packLine(3, 3, "7.00"),
	}
	basket := normalize(t, repo, raw...)

	wantQty := 0
	wantValue := d("0")
	for _, l := range raw {
		wantQty += l.Quantity
		wantValue = wantValue.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}

	gotQty := 0
	gotValue := d("0")
	for _, l := range basket.Lines {
		gotQty += l.Quantity
		gotValue = gotValue.Add(l.BaseExtendedPrice)
	}
	assert.Equal(t, wantQty, gotQty)
	assert.True(t, wantValue.Equal(gotValue), "want %s got %s", wantValue, gotValue)
}

func TestNormalizeBasketIdempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.products = []models.Product{marlboroPack()}

	first := normalize(t, repo, packLine(1, 1, "7.00"), packLine(2, 1, "7.00"))

	// Re-normalizing the merged output changes nothing.
	again := make([]models.RawLine, 0, len(first.Lines))
	for _, l := range first.Lines {
		again = append(again, models.RawLine{
			LineNumber: l.LineNumber,
			UPC:        l.UPC,
			Quantity:   l.Quantity,
			UnitPrice:  l.UnitPrice,
		})
	}
	second := normalize(t, repo, again...)

	require.Len(t, second.Lines, len(first.Lines))
	for i := range first.Lines {
		assert.Equal(t, first.Lines[i].Quantity, second.Lines[i].Quantity)
		assert.Equal(t, first.Lines[i].UPC, second.Lines[i].UPC)
		assert.True(t, first.Lines[i].BaseExtendedPrice.Equal(second.Lines[i].BaseExtendedPrice))
	}
	assert.Equal(t, 0, second.MergedCount)
}

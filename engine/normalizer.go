package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/shopspring/decimal"

	"rtn-loyalty-tier3/models"
)

// normalizeBasket resolves every raw line against the catalog and merges
// duplicates. The merge key is (upc, unit_price at cents resolution);
// quantities sum and the first occurrence fixes position and line number.
func (e *Engine) normalizeBasket(ctx context.Context, dc *DecisionContext) error {
	basket := &models.NormalizedBasket{}

	type mergeKey struct {
		upc   string
		price string
	}
	index := make(map[mergeKey]int)

	for _, raw := range dc.Request.Lines {
		if raw.UPC == "" || raw.Quantity <= 0 {
			basket.DroppedCount++
			continue
		}

		key := mergeKey{upc: raw.UPC, price: raw.UnitPrice.StringFixed(2)}
		if i, ok := index[key]; ok {
			basket.Lines[i].Quantity += raw.Quantity
			basket.Lines[i].SourceLineNumbers = append(basket.Lines[i].SourceLineNumbers, raw.LineNumber)
			basket.MergedCount++
			continue
		}

		match, err := e.catalog.ResolveUPC(ctx, raw.UPC)
		if err != nil {
			return fmt.Errorf("failed to resolve upc %s: %w", raw.UPC, err)
		}

		line := models.NormalizedLine{
			LineNumber:        raw.LineNumber,
			UPC:               raw.UPC,
			UOM:               match.UOM,
			Quantity:          raw.Quantity,
			UnitPrice:         raw.UnitPrice,
			IsPromotional:     match.IsPromotional,
			SourceLineNumbers: []int{raw.LineNumber},
		}
		if match.Unknown {
			line.SKUGUID = models.UnknownSKUPrefix + raw.UPC
			line.SKUName = models.UnknownTobaccoName
			line.Brand = models.UnknownBrand
			line.Manufacturer = models.UnknownManufacturer
			line.IsUnknown = true
			basket.UnknownUPCs = append(basket.UnknownUPCs, raw.UPC)
			log.Printf("⚠️ normalizeBasket: unknown upc=%s (line %d)", raw.UPC, raw.LineNumber)
		} else {
			line.SKUGUID = match.Product.SKUGUID
			line.SKUName = match.Product.SKUName
			line.Brand = match.Product.Brand
			line.Manufacturer = match.Product.Manufacturer
		}

		index[key] = len(basket.Lines)
		basket.Lines = append(basket.Lines, line)
	}

	// Extended prices only make sense after quantities have settled.
	for i := range basket.Lines {
		l := &basket.Lines[i]
		l.BaseExtendedPrice = l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
	}

	dc.Basket = basket
	return nil
}

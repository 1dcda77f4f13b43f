package allocation

import (
	"github.com/shopspring/decimal"

	"github.com/mamadbah2/ranch/internal/domain/models"
)

// SplitCost divides total across cattleIDs to the cent. The first
// remainder-many animals carry one extra cent so the shares always add back
// to the rounded total exactly.
func SplitCost(total float64, cattleIDs []string) []models.CostShare {
	if len(cattleIDs) == 0 {
		return nil
	}

	cents := decimal.NewFromFloat(total).Shift(2).Round(0).IntPart()
	if cents < 0 {
		cents = 0
	}
	n := int64(len(cattleIDs))
	base, remainder := cents/n, cents%n

	shares := make([]models.CostShare, len(cattleIDs))
	for i, id := range cattleIDs {
		c := base
		if int64(i) < remainder {
			c++
		}
		shares[i] = models.CostShare{
			CattleID: id,
			Amount:   decimal.New(c, -2).InexactFloat64(),
		}
	}
	return shares
}

// SumShares adds shares in decimal to avoid float drift.
func SumShares(shares []models.CostShare) decimal.Decimal {
	sum := decimal.Zero
	for _, s := range shares {
		sum = sum.Add(decimal.NewFromFloat(s.Amount))
	}
	return sum
}

package models

import "time"

// ItemCategory discriminates feed stock from drug stock.
type ItemCategory string

const (
	CategoryFeed ItemCategory = "feed"
	CategoryDrug ItemCategory = "drug"
)

// InventoryItem is a feed or drug line in stock.
type InventoryItem struct {
	ID             string       `bson:"_id" json:"id"`
	Name           string       `bson:"name" json:"name"`
	Category       ItemCategory `bson:"category" json:"category"`
	Quantity       float64      `bson:"quantity" json:"quantity"`
	Unit           string       `bson:"unit" json:"unit"`
	CostPerUnit    float64      `bson:"cost_per_unit" json:"cost_per_unit"`
	WithdrawalDays int          `bson:"withdrawal_days,omitempty" json:"withdrawal_days,omitempty"`
}

// Deduction removes Quantity units of ItemID from stock.
type Deduction struct {
	ItemID   string  `json:"item_id"`
	Quantity float64 `json:"quantity"`
}

// DrugWithdrawal is one drug's withdrawal window for an animal.
type DrugWithdrawal struct {
	DrugID    string    `json:"drug_id"`
	DrugName  string    `json:"drug_name,omitempty"`
	GivenOn   time.Time `json:"given_on"`
	Days      int       `json:"days"`
	ClearDate time.Time `json:"clear_date"`
}

// WithdrawalStatus reports when an animal has cleared every drug it was given.
type WithdrawalStatus struct {
	CattleID  string           `json:"cattle_id"`
	ClearDate *time.Time       `json:"clear_date,omitempty"`
	Drugs     []DrugWithdrawal `json:"drugs"`
}

// ClearToSell reports whether every withdrawal period has elapsed by asOf.
func (w WithdrawalStatus) ClearToSell(asOf time.Time) bool {
	if w.ClearDate == nil {
		return true
	}
	return !StartOfDay(asOf).Before(*w.ClearDate)
}

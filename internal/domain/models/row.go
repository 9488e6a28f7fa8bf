package models

// RowState is one editable line of the in-progress entry grid. Fat and milk
// are kept as raw text until the row is saved.
type RowState struct {
	SerialNo int     `json:"serial_no"`
	Name     string  `json:"name"`
	FatRate  string  `json:"fat_rate"`
	MilkQty  string  `json:"milk_qty"`
	Amount   float64 `json:"amount"`
}

// RowTotals aggregates the current grid.
type RowTotals struct {
	TotalMilk   float64 `json:"total_milk"`
	AvgFat      float64 `json:"avg_fat"`
	TotalAmount float64 `json:"total_amount"`
}

// RowSnapshot is a copy of the grid with its totals.
type RowSnapshot struct {
	Rows            []RowState `json:"rows"`
	Totals          RowTotals  `json:"totals"`
	InitFromMembers bool       `json:"initialized_from_members"`
	RateConfigured  bool       `json:"rate_configured"`
}

package models

// ProductionReport nets collected milk and payouts against milk forwarded to
// the factory and milk sold locally. It is derived on demand and never stored.
type ProductionReport struct {
	TotalMilkCollected float64 `json:"total_milk_collected"`
	TotalMilkSent      float64 `json:"total_milk_sent"`
	LocalSoldMilk      float64 `json:"local_sold_milk"`
	TotalPaidToMembers float64 `json:"total_paid_to_members"`
	FactoryIncome      float64 `json:"factory_income"`
	LocalIncome        float64 `json:"local_income"`
	FinalEarning       float64 `json:"final_earning"`
}

// Totals summarizes a set of collection records for rendering.
type Totals struct {
	Count       int     `json:"count"`
	TotalMilk   float64 `json:"total_milk"`
	AvgFat      float64 `json:"avg_fat"`
	TotalAmount float64 `json:"total_amount"`
}

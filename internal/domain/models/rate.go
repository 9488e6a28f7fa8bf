package models

import "time"

// Rate is the single active price configuration of the collection centre.
type Rate struct {
	// BuyingFatRate is paid to members per fat percent per litre.
	BuyingFatRate float64 `bson:"buying_fat_rate" json:"buying_fat_rate" db:"buying_fat_rate"`
	// SellingFatRate is received from the factory per fat percent per litre.
	SellingFatRate float64 `bson:"selling_fat_rate" json:"selling_fat_rate" db:"selling_fat_rate"`
	// MilkResaleRate is the flat per litre price of milk sold locally.
	MilkResaleRate float64   `bson:"milk_resale_rate" json:"milk_resale_rate" db:"milk_resale_rate"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at" db:"-"`
}

// BuyingConfigured reports whether member amounts can be computed.
func (r Rate) BuyingConfigured() bool {
	return r.BuyingFatRate > 0
}

// ProductionConfigured reports whether a production report can be computed.
func (r Rate) ProductionConfigured() bool {
	return r.SellingFatRate > 0
}

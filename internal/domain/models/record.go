package models

import "time"

// CollectionRecord is one immutable milk intake line. Name is a denormalized
// copy of the member name and is the only link back to the member.
type CollectionRecord struct {
	ID          string    `bson:"id" json:"id"`
	Name        string    `bson:"name" json:"name"`
	FatPercent  float64   `bson:"fat" json:"fat"`
	MilkQty     float64   `bson:"milk_qty" json:"milk_qty"`
	AmountToPay float64   `bson:"amount_to_pay" json:"amount_to_pay"`
	Timestamp   time.Time `bson:"timestamp" json:"timestamp"`
	IsNight     bool      `bson:"is_night" json:"is_night"`
}

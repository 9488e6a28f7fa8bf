package reporting

import "github.com/mamadbah2/dairy/internal/domain/models"

// Reconcile nets a session against its factory entry. ok is false while the
// factory entry is missing. Sent milk is not capped at the collected volume,
// so local milk and local income can go negative.
func Reconcile(session models.CollectionSession, rate models.Rate) (report models.ProductionReport, ok bool) {
	if session.FactoryEntry == nil {
		return models.ProductionReport{}, false
	}

	var collected, paid float64
	for _, record := range session.Records {
		collected += record.MilkQty
		paid += record.AmountToPay
	}

	sentMilk := session.FactoryEntry.MilkQty
	sentFat := session.FactoryEntry.FatPercent
	localMilk := collected - sentMilk
	factoryIncome := sentMilk * sentFat * rate.SellingFatRate
	localIncome := localMilk * rate.MilkResaleRate

	return models.ProductionReport{
		TotalMilkCollected: collected,
		TotalMilkSent:      sentMilk,
		LocalSoldMilk:      localMilk,
		TotalPaidToMembers: paid,
		FactoryIncome:      factoryIncome,
		LocalIncome:        localIncome,
		FinalEarning:       factoryIncome + localIncome - paid,
	}, true
}

// Totals aggregates records for rendering. AvgFat is the mean over all
// records and 0 when there are none.
func Totals(records []models.CollectionRecord) models.Totals {
	totals := models.Totals{Count: len(records)}
	var fatSum float64
	for _, record := range records {
		totals.TotalMilk += record.MilkQty
		totals.TotalAmount += record.AmountToPay
		fatSum += record.FatPercent
	}
	if len(records) > 0 {
		totals.AvgFat = fatSum / float64(len(records))
	}
	return totals
}

package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/dairy/internal/domain/models"
)

func sampleSession() models.CollectionSession {
	return models.CollectionSession{
		ID: "s1",
		Records: []models.CollectionRecord{
			{Name: "jeet", MilkQty: 10, FatPercent: 4, AmountToPay: 60},
			{Name: "ramesh", MilkQty: 8, FatPercent: 6, AmountToPay: 50},
		},
		FactoryEntry: &models.CollectionRecord{Name: "factory", MilkQty: 20, FatPercent: 4},
	}
}

func TestReconcileSentExceedsCollected(t *testing.T) {
	rate := models.Rate{SellingFatRate: 50, MilkResaleRate: 30}

	report, ok := Reconcile(sampleSession(), rate)
	assert.True(t, ok)
	assert.Equal(t, models.ProductionReport{
		TotalMilkCollected: 18,
		TotalMilkSent:      20,
		LocalSoldMilk:      -2,
		TotalPaidToMembers: 110,
		FactoryIncome:      4000,
		LocalIncome:        -60,
		FinalEarning:       3830,
	}, report)
	assert.Equal(t, report.TotalMilkCollected, report.TotalMilkSent+report.LocalSoldMilk)
}

func TestReconcileIsPure(t *testing.T) {
	session := sampleSession()
	rate := models.Rate{SellingFatRate: 50, MilkResaleRate: 30}

	first, _ := Reconcile(session, rate)
	second, _ := Reconcile(session, rate)
	assert.Equal(t, first, second)
	assert.Equal(t, sampleSession(), session)
}

func TestReconcilePending(t *testing.T) {
	session := sampleSession()
	session.FactoryEntry = nil

	_, ok := Reconcile(session, models.Rate{SellingFatRate: 50})
	assert.False(t, ok)
}

func TestTotals(t *testing.T) {
	assert.Equal(t, models.Totals{}, Totals(nil))

	totals := Totals(sampleSession().Records)
	assert.Equal(t, models.Totals{Count: 2, TotalMilk: 18, AvgFat: 5, TotalAmount: 110}, totals)
}

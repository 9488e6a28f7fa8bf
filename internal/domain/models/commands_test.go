package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantType CommandType
		wantArgs []string
		wantBody string
	}{
		{name: "blank", input: "   ", wantType: CommandUnknown},
		{name: "plain entry", input: " Ramesh 12, 5.6 ", wantType: CommandEntry, wantArgs: []string{"ramesh", "12,", "5.6"}, wantBody: "Ramesh 12, 5.6"},
		{name: "slash entry", input: "/entry jeet 10, 4", wantType: CommandEntry, wantArgs: []string{"jeet", "10,", "4"}, wantBody: "jeet 10, 4"},
		{name: "rates", input: "/RATES 7.5 8 50", wantType: CommandRates, wantArgs: []string{"7.5", "8", "50"}, wantBody: "7.5 8 50"},
		{name: "no args", input: "/save", wantType: CommandSave},
		{name: "unknown", input: "/eggs 12", wantType: CommandUnknown, wantArgs: []string{"12"}, wantBody: "12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := ParseCommand(tt.input)
			assert.Equal(t, tt.wantType, cmd.Type)
			assert.Equal(t, tt.wantArgs, cmd.Args)
			assert.Equal(t, tt.wantBody, cmd.Body)
			assert.Equal(t, tt.input, cmd.Raw)
		})
	}
}

func TestSessionShift(t *testing.T) {
	assert.Equal(t, ShiftNight, CollectionSession{IsNight: true}.Shift())
	assert.Equal(t, ShiftMorning, CollectionSession{}.Shift())
}

func TestRateConfigured(t *testing.T) {
	assert.False(t, Rate{}.BuyingConfigured())
	assert.True(t, Rate{BuyingFatRate: 7}.BuyingConfigured())
	assert.False(t, Rate{BuyingFatRate: 7}.ProductionConfigured())
	assert.True(t, Rate{SellingFatRate: 8}.ProductionConfigured())
}

package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAlert_ShouldTrigger(t *testing.T) {
	testCases := []struct {
		name      string
		direction Direction
		target    string
		price     string
		paused    bool
		want      bool
	}{
		{name: "above below target", direction: Above, target: "50000", price: "49000", want: false},
		{name: "above at target", direction: Above, target: "50000", price: "50000", want: true},
		{name: "above over target", direction: Above, target: "50000", price: "50500", want: true},
		{name: "below over target", direction: Below, target: "100", price: "100.01", want: false},
		{name: "below at target", direction: Below, target: "100", price: "100", want: true},
		{name: "below under target", direction: Below, target: "100", price: "99.5", want: true},
		{name: "paused above", direction: Above, target: "1", price: "1000", paused: true, want: false},
		{name: "paused below", direction: Below, target: "1000", price: "1", paused: true, want: false},
		{name: "unknown direction", direction: Direction("sideways"), target: "1", price: "1", want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			a := Alert{
				TargetPrice: decimal.RequireFromString(tc.target),
				Direction:   tc.direction,
				Paused:      tc.paused,
			}
			assert.Equal(t, tc.want, a.ShouldTrigger(decimal.RequireFromString(tc.price)))
		})
	}
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection(" Above ")
	assert.NoError(t, err)
	assert.Equal(t, Above, d)

	_, err = ParseDirection("up")
	assert.Error(t, err)
}

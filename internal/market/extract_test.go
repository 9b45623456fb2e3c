package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPrices(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []int
	}{
		{
			name: "dotted clp amount with dollar sign",
			text: "iPhone 13 128GB usado $350.000 conversable",
			want: []int{350000},
		},
		{
			name: "plain digit run",
			text: "lo dejo en 45000 pesos",
			want: []int{45000},
		},
		{
			name: "multiple amounts",
			text: "Precio: $1.200.000, antes 1.400.000",
			want: []int{1200000, 1400000},
		},
		{
			name: "dollar sign with space",
			text: "vendo a $ 380.000",
			want: []int{380000},
		},
		{
			name: "three digit number not an amount",
			text: "valorado en 900",
			want: nil,
		},
		{
			name: "amount at floor discarded",
			text: "envío $5.000 a todo Chile",
			want: nil,
		},
		{
			name: "no amounts",
			text: "iPhone 13 como nuevo, conversable",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPrices(tt.text, 0))
		})
	}
}

func TestExtractPricesCustomFloor(t *testing.T) {
	assert.Nil(t, ExtractPrices("oferta a 30000", 50000))
	assert.Equal(t, []int{60000}, ExtractPrices("oferta a 60000", 50000))
}

func TestMentionsAccessory(t *testing.T) {
	assert.True(t, mentionsAccessory("Funda iPhone 13 silicona $8.990", DefaultAccessoryKeywords))
	assert.True(t, mentionsAccessory("CARCASA transparente", DefaultAccessoryKeywords))
	assert.True(t, mentionsAccessory("Lámina mica vidrio templado", DefaultAccessoryKeywords))
	assert.False(t, mentionsAccessory("iPhone 13 128GB usado $350.000", DefaultAccessoryKeywords))
}

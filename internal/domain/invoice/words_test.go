// internal/domain/invoice/words_test.go
package invoice

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmountInWords(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "Zero"},
		{7, "Seven"},
		{13, "Thirteen"},
		{20, "Twenty"},
		{42, "Forty Two"},
		{100, "One Hundred"},
		{118, "One Hundred Eighteen"},
		{945, "Nine Hundred Forty Five"},
		{1000, "One Thousand"},
		{2350, "Two Thousand Three Hundred Fifty"},
		{45000, "Forty Five Thousand"},
		{100000, "One Lakh"},
		{123456, "One Lakh Twenty Three Thousand Four Hundred Fifty Six"},
		{10000000, "One Crore"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, AmountInWords(tt.amount), "amount %d", tt.amount)
	}
}

func TestAmountInWords_Negative(t *testing.T) {
	assert.Equal(t, "Minus Fifty", AmountInWords(-50))
}

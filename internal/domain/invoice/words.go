// internal/domain/invoice/words.go
package invoice

import "strings"

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// AmountInWords renders an integer currency amount as English words using
// Indian groupings (hundred, thousand, lakh, crore). Fractional paise are
// not rendered; invoices print the rounded rupee figure beside the words, so
// this is a presentation helper with no rounding-sensitive role.
func AmountInWords(amount int64) string {
	if amount == 0 {
		return "Zero"
	}
	if amount < 0 {
		return "Minus " + AmountInWords(-amount)
	}
	return strings.Join(strings.Fields(words(amount)), " ")
}

func words(n int64) string {
	switch {
	case n < 20:
		return onesWords[n]
	case n < 100:
		return tensWords[n/10] + " " + words(n%10)
	case n < 1000:
		return onesWords[n/100] + " Hundred " + words(n%100)
	case n < 100000:
		return words(n/1000) + " Thousand " + words(n%1000)
	case n < 10000000:
		return words(n/100000) + " Lakh " + words(n%100000)
	default:
		return words(n/10000000) + " Crore " + words(n%10000000)
	}
}

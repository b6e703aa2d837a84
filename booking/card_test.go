package booking_test

import (
	"lessons/booking"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLuhnValid(t *testing.T) {
	testCases := []struct {
		name   string
		number string
		valid  bool
	}{
		{name: "visa test card", number: "4242424242424242", valid: true},
		{name: "last digit off", number: "4242424242424241", valid: false},
		{name: "amex test card", number: "378282246310005", valid: true},
		{name: "mastercard test card", number: "5555555555554444", valid: true},
		{name: "letters", number: "4242abcd42424242", valid: false},
		{name: "empty", number: "", valid: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.valid, booking.LuhnValid(tc.number))
		})
	}
}

func TestNormalizeCardNumber(t *testing.T) {
	assert.Equal(t, "4242424242424242", booking.NormalizeCardNumber("4242 4242-4242 4242"))
	assert.True(t, booking.LuhnValid(booking.NormalizeCardNumber("4242-4242-4242-4242")))
}

func TestCardBrand(t *testing.T) {
	testCases := []struct {
		number string
		brand  string
	}{
		{number: "4242424242424242", brand: booking.BrandVisa},
		{number: "4222222222222", brand: booking.BrandVisa},
		{number: "5555555555554444", brand: booking.BrandMastercard},
		{number: "2223003122003222", brand: booking.BrandMastercard},
		{number: "378282246310005", brand: booking.BrandAmex},
		{number: "341111111111111", brand: booking.BrandAmex},
		{number: "6011111111111117", brand: booking.BrandGeneric},
		{number: "5655555555554444", brand: booking.BrandGeneric},
	}

	for _, tc := range testCases {
		t.Run(tc.number, func(t *testing.T) {
			assert.Equal(t, tc.brand, booking.CardBrand(tc.number))
		})
	}
}

func TestLastFour(t *testing.T) {
	for _, number := range []string{
		"424242421234",
		"4242424242421234",
		"4242424242424241234",
	} {
		assert.Equal(t, "1234", booking.LastFour(number))
	}
}

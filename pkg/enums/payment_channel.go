package enums

import "fmt"

// PaymentChannel is where a payment entry was collected.
type PaymentChannel string

const (
	PaymentChannelOffice PaymentChannel = "office"
	PaymentChannelOnline PaymentChannel = "online"
)

var validPaymentChannels = []PaymentChannel{
	PaymentChannelOffice,
	PaymentChannelOnline,
}

// String implements fmt.Stringer.
func (c PaymentChannel) String() string {
	return string(c)
}

// IsValid reports whether the value is a known PaymentChannel.
func (c PaymentChannel) IsValid() bool {
	for _, candidate := range validPaymentChannels {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParsePaymentChannel converts raw input into a PaymentChannel.
func ParsePaymentChannel(value string) (PaymentChannel, error) {
	for _, candidate := range validPaymentChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment channel %q", value)
}

package xml

// PaymentNotInformed is the label used when a payment has no tPag code
const PaymentNotInformed = "Not informed"

// paymentMethods maps tPag codes to their labels
var paymentMethods = map[string]string{
	"01": "Cash",
	"02": "Check",
	"03": "Credit Card",
	"04": "Debit Card",
	"05": "Store Credit",
	"10": "Food Voucher",
	"11": "Meal Voucher",
	"12": "Gift Voucher",
	"13": "Fuel Voucher",
	"14": "Trade Note",
	"15": "Bank Slip",
	"16": "Bank Deposit",
	"17": "Instant Payment",
	"18": "Bank Transfer",
	"19": "Digital Wallet",
	"99": "Other",
}

// PaymentMethodLabel decodes a tPag code. Unknown codes are returned
// unchanged; an empty code yields PaymentNotInformed.
func PaymentMethodLabel(code string) string {
	if code == "" {
		return PaymentNotInformed
	}
	if label, ok := paymentMethods[code]; ok {
		return label
	}
	return code
}

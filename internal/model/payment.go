package model

import "time"

// Instrument is the card data presented when creating a payment intent.
// It is validated and then discarded; only the intent is stored.
type Instrument struct {
	CardNumber string `json:"cardNumber"`
	CardHolder string `json:"cardHolder"`
	ExpMonth   string `json:"expMonth"`
	ExpYear    string `json:"expYear"`
	CVV        string `json:"cvv"`
}

// PaymentIntent is an authorized-but-unconfirmed payment bound to exactly
// one hold.  It is consumed on successful confirmation and dropped when
// its hold expires.
type PaymentIntent struct {
	ID        string    // pi_ prefixed identifier
	HoldKey   string    // hold the intent pays for
	UserID    string    // owner; must match the hold owner
	OTP       string    // six digit one-time code
	Amount    int64     // copied from the hold's price snapshot
	CreatedAt time.Time // creation time
}

package models

import "github.com/shopspring/decimal"

// Amount is an unscaled token amount (wei).
// It is stored as numeric(65,0), the widest integer column mysql and postgres share.
type Amount = decimal.Decimal

// ZeroAmount is the amount 0.
var ZeroAmount = decimal.Zero

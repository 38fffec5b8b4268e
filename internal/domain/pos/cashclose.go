package pos

import (
	"time"

	"github.com/erp/pos/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// differenceTolerance is the cent threshold under which a drawer
// difference counts as balanced.
var differenceTolerance = decimal.NewFromFloat(0.01)

// CashCloseInput is the operator's declared drawer count, per channel
// and currency.
type CashCloseInput struct {
	DeclaredCashUSD decimal.Decimal `json:"declared_cash_usd"`
	DeclaredCashVES decimal.Decimal `json:"declared_cash_ves"`
	DeclaredCardUSD decimal.Decimal `json:"declared_card_usd"`
	DeclaredCardVES decimal.Decimal `json:"declared_card_ves"`
	Notes           string          `json:"notes,omitempty"`
}

// Validate rejects negative declared amounts
func (i CashCloseInput) Validate() error {
	for _, d := range []decimal.Decimal{i.DeclaredCashUSD, i.DeclaredCashVES, i.DeclaredCardUSD, i.DeclaredCardVES} {
		if d.IsNegative() {
			return shared.NewDomainError("INVALID_INPUT", "declared amounts cannot be negative")
		}
	}
	return nil
}

// SystemTotals are the collaborator-computed sales figures for the
// period being closed. Transfer and credit channels are carried for
// display; only cash and card participate in the drawer difference.
type SystemTotals struct {
	SalesUSD    decimal.Decimal `json:"sales_usd"`
	TaxUSD      decimal.Decimal `json:"tax_usd"`
	CashUSD     decimal.Decimal `json:"cash_usd"`
	CashVES     decimal.Decimal `json:"cash_ves"`
	CardUSD     decimal.Decimal `json:"card_usd"`
	CardVES     decimal.Decimal `json:"card_ves"`
	TransferUSD decimal.Decimal `json:"transfer_usd"`
	TransferVES decimal.Decimal `json:"transfer_ves"`
	CreditUSD   decimal.Decimal `json:"credit_usd"`
	CreditVES   decimal.Decimal `json:"credit_ves"`
}

// DifferenceVerdict classifies a drawer difference
type DifferenceVerdict string

const (
	DrawerBalanced  DifferenceVerdict = "BALANCED"
	DrawerSurplus   DifferenceVerdict = "SURPLUS"
	DrawerShortfall DifferenceVerdict = "SHORTFALL"
)

// ClassifyDifference maps a signed difference (declared − system) to a
// verdict, treating anything under one cent as balanced.
func ClassifyDifference(diff decimal.Decimal) DifferenceVerdict {
	if diff.Abs().LessThan(differenceTolerance) {
		return DrawerBalanced
	}
	if diff.IsPositive() {
		return DrawerSurplus
	}
	return DrawerShortfall
}

// CashCloseResult is the immutable reconciliation outcome. A mismatch is
// reported, never blocked; there is no edit-in-place or retry.
type CashCloseResult struct {
	System        SystemTotals      `json:"system"`
	Declared      CashCloseInput    `json:"declared"`
	DifferenceUSD decimal.Decimal   `json:"difference_usd"`
	DifferenceVES decimal.Decimal   `json:"difference_ves"`
	VerdictUSD    DifferenceVerdict `json:"verdict_usd"`
	VerdictVES    DifferenceVerdict `json:"verdict_ves"`
	ClosedAt      time.Time         `json:"closed_at"`
}

// Reconcile computes the per-currency drawer differences
// (declared − system over the cash and card channels) and classifies
// each side.
func Reconcile(system SystemTotals, declared CashCloseInput) CashCloseResult {
	diffUSD := declared.DeclaredCashUSD.Add(declared.DeclaredCardUSD).
		Sub(system.CashUSD.Add(system.CardUSD)).Round(2)
	diffVES := declared.DeclaredCashVES.Add(declared.DeclaredCardVES).
		Sub(system.CashVES.Add(system.CardVES)).Round(2)

	return CashCloseResult{
		System:        system,
		Declared:      declared,
		DifferenceUSD: diffUSD,
		DifferenceVES: diffVES,
		VerdictUSD:    ClassifyDifference(diffUSD),
		VerdictVES:    ClassifyDifference(diffVES),
		ClosedAt:      time.Now().UTC(),
	}
}

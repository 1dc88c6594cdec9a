// Package tax applies the fixed price multiplier with exemption support.
package tax

import "catalogqa/domain/catalog"

// Options controls which price fields the multiplier touches. Exempt wins
// over both switches: an exempt run never changes a price.
type Options struct {
	ApplyCost bool
	ApplySale bool
	Exempt    bool
}

// Apply multiplies the row's cost and sale price by the tax factor
// according to opts. It must run after numeric defaulting and range
// repair; multiplying an unvalidated price would corrupt the invariant
// checks upstream.
func Apply(row *catalog.Row, opts Options) {
	if opts.Exempt {
		return
	}
	if opts.ApplyCost {
		row.Cost *= catalog.TaxFactor
	}
	if opts.ApplySale {
		row.SalePrice *= catalog.TaxFactor
	}
}

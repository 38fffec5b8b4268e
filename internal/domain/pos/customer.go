package pos

// WalkInTaxID is the tax id used when no registered customer is selected.
const WalkInTaxID = "V00000000"

// Customer is a read model of a CRM customer attached to a sale
type Customer struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// EffectiveTaxID returns the tax id to invoice under, falling back to
// the walk-in id when the CRM record has none.
func (c Customer) EffectiveTaxID() string {
	if c.TaxID == "" {
		return WalkInTaxID
	}
	return c.TaxID
}

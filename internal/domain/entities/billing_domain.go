package entities

// BillingDomain identifies one of the clinic's revenue lines
type BillingDomain string

const (
	BillingDomainConsultation BillingDomain = "consultation"
	BillingDomainPharmacy     BillingDomain = "pharmacy"
	BillingDomainLab          BillingDomain = "lab"
	BillingDomainUltrasound   BillingDomain = "ultrasound"
)

// IsValid reports whether d is a known billing domain
func (d BillingDomain) IsValid() bool {
	switch d {
	case BillingDomainConsultation, BillingDomainPharmacy, BillingDomainLab, BillingDomainUltrasound:
		return true
	}
	return false
}

// HasDraftSession reports whether bills in this domain are built item by item
// in a draft session. Consultation invoices are created in one step.
func (d BillingDomain) HasDraftSession() bool {
	return d == BillingDomainPharmacy || d == BillingDomainLab || d == BillingDomainUltrasound
}

// TracksStock reports whether catalog items of this domain carry stock levels
func (d BillingDomain) TracksStock() bool {
	return d == BillingDomainPharmacy
}

// InvoiceCode is the short code embedded in invoice numbers
func (d BillingDomain) InvoiceCode() string {
	switch d {
	case BillingDomainConsultation:
		return "CON"
	case BillingDomainPharmacy:
		return "PH"
	case BillingDomainLab:
		return "LAB"
	case BillingDomainUltrasound:
		return "USG"
	}
	return "INV"
}

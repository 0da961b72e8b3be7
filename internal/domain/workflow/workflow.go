// Package workflow derives the next step a visit needs from its recorded facts.
//
// The visit checklist is linear: rules are evaluated in a fixed order and
// the first pending one wins. Resolve is pure; loading the facts (and the
// insert-if-absent of the visit actions row) is the caller's job.
package workflow

// StepTag is the machine-readable name of a workflow step
type StepTag string

const (
	StepSendToConsultation     StepTag = "SendToConsultation"
	StepScanPrescription       StepTag = "ScanPrescription"
	StepUploadTRF              StepTag = "UploadTRF"
	StepPrintPharmacyInvoice   StepTag = "PrintPharmacyInvoice"
	StepPrintFormF             StepTag = "PrintFormF"
	StepScanFormF              StepTag = "ScanFormF"
	StepPrintUltrasoundInvoice StepTag = "PrintUltrasoundInvoice"
	StepCompleted              StepTag = "Completed"
)

// Step is a workflow step with its display metadata
type Step struct {
	Tag   StepTag `json:"tag"`
	Label string  `json:"label"`
	// Action is the follow-up reference for the caller, relative to the visit.
	// Empty when there is nothing to do.
	Action string `json:"action,omitempty"`
}

// Facts is the snapshot of everything the checklist looks at
type Facts struct {
	VisitID                  string `json:"visit_id"`
	ConsultationDone         bool   `json:"consultation_done"`
	PrescriptionPrinted      bool   `json:"prescription_printed"`
	PrescriptionScanned      bool   `json:"prescription_scanned"`
	LabInvoiceExists         bool   `json:"lab_invoice_exists"`
	TRFUploaded              bool   `json:"trf_uploaded"`
	PharmacyInvoiceExists    bool   `json:"pharmacy_invoice_exists"`
	PharmacyInvoicePrinted   bool   `json:"pharmacy_invoice_printed"`
	UltrasoundInvoiceExists  bool   `json:"ultrasound_invoice_exists"`
	UltrasoundInvoicePrinted bool   `json:"ultrasound_invoice_printed"`
	FormFNeeded              bool   `json:"form_f_needed"`
	FormFPrinted             bool   `json:"form_f_printed"`
	FormFScanned             bool   `json:"form_f_scanned"`
}

// Result is the outcome of resolving a visit
type Result struct {
	Next      Step             `json:"next"`
	Facts     Facts            `json:"facts"`
	Completed map[StepTag]bool `json:"completed"`
	// Steps is the full checklist in order, so callers can render progress
	Steps []Step `json:"steps"`
}

// IsCompleted reports whether the visit has nothing left to do
func (r Result) IsCompleted() bool {
	return r.Next.Tag == StepCompleted
}

type rule struct {
	step    Step
	pending func(f Facts) bool
}

// rules is the checklist in priority order
var rules = []rule{
	{
		step:    Step{Tag: StepSendToConsultation, Label: "Send to consultation", Action: "consultation"},
		pending: func(f Facts) bool { return !f.ConsultationDone },
	},
	{
		step:    Step{Tag: StepScanPrescription, Label: "Scan prescription", Action: "documents?type=prescription"},
		pending: func(f Facts) bool { return !f.PrescriptionScanned },
	},
	{
		step:    Step{Tag: StepUploadTRF, Label: "Upload TRF", Action: "documents?type=trf"},
		pending: func(f Facts) bool { return f.LabInvoiceExists && !f.TRFUploaded },
	},
	{
		step:    Step{Tag: StepPrintPharmacyInvoice, Label: "Print pharmacy invoice", Action: "invoices?domain=pharmacy"},
		pending: func(f Facts) bool { return f.PharmacyInvoiceExists && !f.PharmacyInvoicePrinted },
	},
	{
		step:    Step{Tag: StepPrintFormF, Label: "Print Form F", Action: "form-f/print"},
		pending: func(f Facts) bool { return f.FormFNeeded && !f.FormFPrinted },
	},
	{
		step:    Step{Tag: StepScanFormF, Label: "Scan signed Form F", Action: "documents?type=form_f"},
		pending: func(f Facts) bool { return f.FormFNeeded && !f.FormFScanned },
	},
	{
		step:    Step{Tag: StepPrintUltrasoundInvoice, Label: "Print ultrasound invoice", Action: "invoices?domain=ultrasound"},
		pending: func(f Facts) bool { return f.UltrasoundInvoiceExists && !f.UltrasoundInvoicePrinted },
	},
}

var completedStep = Step{Tag: StepCompleted, Label: "Visit completed"}

// Resolve returns the first pending step, or Completed.
// Prescription printing is never tracked, so it is always treated as done.
func Resolve(facts Facts) Result {
	facts.PrescriptionPrinted = true

	result := Result{
		Next:      completedStep,
		Facts:     facts,
		Completed: make(map[StepTag]bool, len(rules)),
		Steps:     Steps(),
	}

	found := false
	for _, r := range rules {
		pending := r.pending(facts)
		result.Completed[r.step.Tag] = !pending
		if pending && !found {
			result.Next = r.step
			found = true
		}
	}
	result.Completed[StepCompleted] = !found

	return result
}

// Steps returns the checklist in evaluation order, ending with Completed
func Steps() []Step {
	steps := make([]Step, 0, len(rules)+1)
	for _, r := range rules {
		steps = append(steps, r.step)
	}
	return append(steps, completedStep)
}

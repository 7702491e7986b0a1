package prospect

import "lending-backoffice/pkg/id"

// Stage names, in workflow order.
const (
	StagePrevalidation = "Pre-validation"
	StageKYC           = "KYC"
	StageTitleWork     = "Title Work"
	StageUnderwriting  = "Underwriting"
	StageAppraisal     = "Appraisal"
	StageClosing       = "Closing"
)

// StageNames is the fixed workflow; stage ids are 1-based positions in it.
var StageNames = []string{
	StagePrevalidation,
	StageKYC,
	StageTitleWork,
	StageUnderwriting,
	StageAppraisal,
	StageClosing,
}

var individualDocNames = []string{
	"Government-Issued ID",
	"Social Security Card",
	"Proof of Residence",
	"Personal Tax Returns (2 Years)",
	"Bank Statements (2 Months)",
	"Credit Authorization",
	"Signed Loan Application",
}

var companyDocNames = []string{
	"Articles of Organization",
	"Operating Agreement",
	"EIN Letter",
	"Certificate of Good Standing",
	"Company Bank Statements (2 Months)",
}

var generalDocNames = map[string][]string{
	StageKYC:          {"OFAC Watchlist Screening", "Identity Verification Report"},
	StageTitleWork:    {"Preliminary Title Report", "Title Commitment"},
	StageUnderwriting: {"Underwriting Worksheet", "Loan Approval Memo"},
	StageAppraisal:    {"Appraisal Report"},
}

var closingDisclosureNames = []string{
	"Initial Escrow Disclosure",
	"Closing Disclosure",
}

var closingLoanDocNames = []string{
	"Promissory Note",
	"Deed of Trust",
	"Personal Guaranty",
}

func newDoc(name string) Document {
	return Document{ID: id.NewID32(), Name: name, Status: DocMissing}
}

func docList(names []string) []Document {
	out := make([]Document, 0, len(names))
	for _, n := range names {
		out = append(out, newDoc(n))
	}
	return out
}

// PrevalidationDocuments builds the Pre-validation checklist for a borrower
// and loan type. Individual and company branches are fixed required lists; the
// property list depends on purchase vs refinance, with the existing title
// policy optional on a refinance.
func PrevalidationDocuments(bt BorrowerType, lt LoanType) StageDocuments {
	var sd StageDocuments
	if bt == BorrowerIndividual || bt == BorrowerBoth {
		sd.Individual = docList(individualDocNames)
	}
	if bt == BorrowerCompany || bt == BorrowerBoth {
		sd.Company = docList(companyDocNames)
	}
	switch lt {
	case LoanRefinance:
		sd.Property = docList([]string{"Current Deed", "Payoff Statement"})
		optional := newDoc("Existing Title Policy")
		optional.IsOptional = true
		sd.Property = append(sd.Property, optional)
	default: // purchase
		sd.Property = docList([]string{"Purchase Contract"})
	}
	return sd
}

// GeneralDocuments builds the fixed checklist for any stage after
// Pre-validation. Closing yields the disclosures and loan-docs sub-groups
// (each document carrying the sent/signed/filled workflow) plus the final
// approval bucket.
func GeneralDocuments(stageName string) StageDocuments {
	var sd StageDocuments
	if stageName == StageClosing {
		for _, n := range closingDisclosureNames {
			d := newDoc(n)
			d.Category = CategoryDisclosures
			sd.General = append(sd.General, d)
		}
		for _, n := range closingLoanDocNames {
			d := newDoc(n)
			d.Category = CategoryLoanDocs
			sd.General = append(sd.General, d)
		}
		sd.ClosingFinalApproval = []Document{newDoc("Final Closing Approval")}
		return sd
	}
	if names, ok := generalDocNames[stageName]; ok {
		sd.General = docList(names)
	}
	return sd
}

// NewStages builds the full six-stage workflow for a new prospect: stage 1 in
// progress, the rest locked.
func NewStages(bt BorrowerType, lt LoanType) []Stage {
	stages := make([]Stage, 0, len(StageNames))
	for i, name := range StageNames {
		st := Stage{ID: i + 1, Name: name, Status: StageLocked}
		if i == 0 {
			st.Status = StageInProgress
			st.Documents = PrevalidationDocuments(bt, lt)
		} else {
			st.Documents = GeneralDocuments(name)
		}
		stages = append(stages, st)
	}
	return stages
}

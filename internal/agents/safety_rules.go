package agents

import (
	"fmt"
	"strings"

	"github.com/medichain-agent-server/internal/domain"
)

// fdaApprovedDrugs is a fixed allowlist of generic drug names. A production
// deployment would query a drug database; the demo checks set membership on
// the lowercased name.
var fdaApprovedDrugs = map[string]struct{}{
	"acetaminophen": {},
	"ibuprofen":     {},
	"aspirin":       {},
	"amoxicillin":   {},
	"metformin":     {},
	"lisinopril":    {},
	"atorvastatin":  {},
	"omeprazole":    {},
	"levothyroxine": {},
	"albuterol":     {},
	"oseltamivir":   {},
	"azithromycin":  {},
}

// ApplyComplianceRules merges deterministic FDA, HIPAA, and ethics findings
// into the review. Rule findings only add issues, never clear them: a
// model-asserted failure stands, and the overall judgment and risk level
// are recomputed from the final compliance flags.
func ApplyComplianceRules(review *domain.SafetyReview, plan domain.TreatmentPlan, patient domain.PatientProfile) {
	// FDA allowlist check
	var unapproved []string
	for _, med := range plan.Medications {
		name := strings.ToLower(strings.TrimSpace(med.Name))
		if _, ok := fdaApprovedDrugs[name]; !ok {
			unapproved = append(unapproved, med.Name)
		}
	}
	review.FDACompliance.UnapprovedMedications = unapproved
	if len(unapproved) > 0 {
		review.FDACompliance.Passed = false
		for _, name := range unapproved {
			review.FDACompliance.Issues = append(review.FDACompliance.Issues,
				fmt.Sprintf("Medication '%s' needs FDA approval verification", name))
		}
	}

	// HIPAA consent check
	if !patient.ConsentOnFile {
		review.HIPAACompliance.Issues = append(review.HIPAACompliance.Issues,
			"Patient consent documentation should be verified")
	}
	if len(review.HIPAACompliance.Issues) > 0 {
		review.HIPAACompliance.Passed = false
	}

	// Ethics checks on vulnerable populations and high-risk medications
	var concerns []string
	if patient.Age < 18 {
		concerns = append(concerns, "Pediatric patient - ensure appropriate consent from guardian")
	} else if patient.Age > 65 {
		concerns = append(concerns, "Geriatric patient - consider dose adjustments and polypharmacy risks")
	}
	for _, med := range plan.Medications {
		for _, precaution := range med.Precautions {
			if strings.Contains(strings.ToLower(precaution), "warning") {
				concerns = append(concerns, fmt.Sprintf("High-risk medication prescribed: %s", med.Name))
				break
			}
		}
	}
	review.EthicalConcerns = append(review.EthicalConcerns, concerns...)

	// Rule-derived overall judgment
	hasFDAIssues := !review.FDACompliance.Passed
	hasHIPAAIssues := len(review.HIPAACompliance.Issues) > 0
	hasEthicalIssues := len(review.EthicalConcerns) > 0

	review.Compliant = !(hasFDAIssues || hasHIPAAIssues || hasEthicalIssues)

	switch {
	case hasFDAIssues || hasHIPAAIssues:
		review.RiskLevel = domain.RiskHigh
	case hasEthicalIssues:
		review.RiskLevel = domain.RiskMedium
	default:
		review.RiskLevel = domain.RiskLow
	}
}

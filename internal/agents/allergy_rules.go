package agents

import (
	"fmt"
	"strings"

	"github.com/medichain-agent-server/internal/domain"
)

// ApplyAllergyCrossCheck flags medications that may conflict with patient
// allergies. The match is a case-insensitive substring test in either
// direction with no minimum length, which deliberately over-matches: an
// empty or single-letter allergy string will flag every medication
// containing it. Kept loose on purpose; tightening it would hide real hits
// on partial drug names.
//
// Each hit prepends a warning to the medication's precautions and appends
// the same warning to the plan-level AllergyWarnings list.
func ApplyAllergyCrossCheck(plan *domain.TreatmentPlan, allergies []string) {
	if plan == nil || len(allergies) == 0 {
		return
	}

	var warnings []string
	for i := range plan.Medications {
		med := &plan.Medications[i]
		medName := strings.ToLower(strings.TrimSpace(med.Name))

		for _, allergy := range allergies {
			allergyLower := strings.ToLower(strings.TrimSpace(allergy))
			if strings.Contains(medName, allergyLower) || strings.Contains(allergyLower, medName) {
				warning := fmt.Sprintf("WARNING: %s may be contraindicated due to %s allergy", med.Name, allergy)
				warnings = append(warnings, warning)
				med.Precautions = append([]string{warning}, med.Precautions...)
			}
		}
	}

	if len(warnings) > 0 {
		plan.AllergyWarnings = append(plan.AllergyWarnings, warnings...)
	}
}

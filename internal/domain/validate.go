package domain

// Validate checks a patient profile at the API boundary
func (p *PatientProfile) Validate() error {
	if p.Name == "" {
		return NewValidationError("name", "name is required", p.Name)
	}
	if p.Age < 0 || p.Age > 150 {
		return NewValidationError("age", "age must be between 0 and 150", p.Age)
	}
	switch p.Gender {
	case GenderMale, GenderFemale, GenderOther:
	default:
		return NewValidationError("gender", "gender must be one of male, female, other", p.Gender)
	}
	return nil
}

// Validate checks a symptom set at the API boundary
func (s *SymptomSet) Validate() error {
	if len(s.Symptoms) == 0 {
		return NewValidationError("symptoms", "at least one symptom is required", nil)
	}
	if s.ChiefComplaint == "" {
		return NewValidationError("chief_complaint", "chief complaint is required", s.ChiefComplaint)
	}
	for i, sym := range s.Symptoms {
		if sym.Name == "" {
			return NewValidationError("symptoms.name", "symptom name is required", i)
		}
		if sym.Severity < 1 || sym.Severity > 10 {
			return NewValidationError("symptoms.severity", "severity must be between 1 and 10", sym.Severity)
		}
		if sym.DurationDays < 0 {
			return NewValidationError("symptoms.duration_days", "duration must be non-negative", sym.DurationDays)
		}
	}
	return nil
}

// Validate range-checks each vital sign that is present. Each measurement is
// validated independently; absent measurements are always valid.
func (v *VitalsReading) Validate() error {
	if v.PatientID == "" {
		return NewValidationError("patient_id", "patient id is required", v.PatientID)
	}
	if v.HeartRate != nil && (*v.HeartRate < 0 || *v.HeartRate > 300) {
		return NewValidationError("heart_rate", "heart rate must be between 0 and 300", *v.HeartRate)
	}
	if v.BloodPressureSystolic != nil && (*v.BloodPressureSystolic < 0 || *v.BloodPressureSystolic > 300) {
		return NewValidationError("blood_pressure_systolic", "systolic pressure must be between 0 and 300", *v.BloodPressureSystolic)
	}
	if v.BloodPressureDiastolic != nil && (*v.BloodPressureDiastolic < 0 || *v.BloodPressureDiastolic > 200) {
		return NewValidationError("blood_pressure_diastolic", "diastolic pressure must be between 0 and 200", *v.BloodPressureDiastolic)
	}
	if v.Temperature != nil && (*v.Temperature < 30 || *v.Temperature > 45) {
		return NewValidationError("temperature", "temperature must be between 30 and 45", *v.Temperature)
	}
	if v.RespiratoryRate != nil && (*v.RespiratoryRate < 0 || *v.RespiratoryRate > 100) {
		return NewValidationError("respiratory_rate", "respiratory rate must be between 0 and 100", *v.RespiratoryRate)
	}
	if v.OxygenSaturation != nil && (*v.OxygenSaturation < 0 || *v.OxygenSaturation > 100) {
		return NewValidationError("oxygen_saturation", "oxygen saturation must be between 0 and 100", *v.OxygenSaturation)
	}
	return nil
}

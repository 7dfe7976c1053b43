package forms

// IntakeForm is the single entity of the system: one row per submission.
//
// Scalar fields are pointers so a PATCH body can distinguish "field absent"
// (nil, keep the stored value) from "field supplied". Multi-valued fields
// use the slice itself for the same purpose: a nil slice was never supplied,
// a non-nil empty slice is a present-but-empty answer. Both marshal to JSON
// null when absent, which is what clients of the original API expect.
type IntakeForm struct {
	ID                 string   `json:"id"`
	Email              *string  `json:"email"`
	SubmittedAt        *string  `json:"submitted_at"`
	ReasonsForTherapy  []string `json:"reasons_for_therapy"`
	GoalsInTherapy     []string `json:"goals_in_therapy"`
	AgeGroup           *string  `json:"age_group"`
	TherapistKnowledge []string `json:"therapist_knowledge"`
	TherapistGender    *string  `json:"therapist_gender"`
	SessionActiveness  *string  `json:"session_activeness"`
}

// IsFinal reports whether the form has been submitted. A final form is a
// write-locked terminal state: no patch may change it again.
func (f *IntakeForm) IsFinal() bool {
	return f != nil && f.SubmittedAt != nil
}

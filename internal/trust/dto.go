package trust

// VerificationRequestDTO is the body of a verification request
type VerificationRequestDTO struct {
	VerificationType string                 `json:"verification_type" validate:"required,oneof=email photo video id_document background_check"`
	Evidence         map[string]interface{} `json:"evidence"`
}

// ReviewDTO identifies the request a reviewer acts on
type ReviewDTO struct {
	VerificationType string `json:"verification_type" validate:"required,oneof=email photo video id_document background_check"`
	Reason           string `json:"reason" validate:"max=500"`
}

// EmergencyDTO is the body of an emergency trigger
type EmergencyDTO struct {
	EmergencyType string                 `json:"emergency_type" validate:"required,max=50"`
	Details       map[string]interface{} `json:"details"`
}

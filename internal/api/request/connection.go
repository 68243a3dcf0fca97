package request

// VerifyConnection is the verify submission. There is deliberately no
// external_id field: the External ID is owned by the server and a
// client-supplied value is never read. Unknown JSON keys are dropped by the
// decoder.
type VerifyConnection struct {
	RoleArn      string `json:"role_arn" validate:"required"`
	Name         string `json:"name" validate:"omitempty,max=128"`
	ConnectionID string `json:"connection_id" validate:"omitempty,uuid"`
}

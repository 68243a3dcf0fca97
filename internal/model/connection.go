package model

import "time"

// Connection binds a user to an external AWS account via an IAM role.
//
// A row starts out pending: it has reserved an External ID but no role yet
// (RoleArn is nil). Verification promotes it in place by setting RoleArn.
// The ExternalID is generated server-side at creation and is immutable; it is
// never accepted from client input and never regenerated.
type Connection struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	ExternalID string    `json:"external_id" db:"external_id"`
	RoleArn    *string   `json:"role_arn,omitempty" db:"role_arn"`
	Name       string    `json:"name" db:"name"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// Verified reports whether the connection has been promoted past the pending
// state. RoleArn transitions only nil -> non-nil, never back.
func (c *Connection) Verified() bool {
	return c.RoleArn != nil
}

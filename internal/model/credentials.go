package model

import "time"

// Credentials are short-lived AWS credentials obtained from STS AssumeRole.
// They are held in memory for the duration of a single request and are never
// persisted, logged, or serialized to clients.
type Credentials struct {
	AccessKeyID     string    `json:"-"`
	SecretAccessKey string    `json:"-"`
	SessionToken    string    `json:"-"`
	Expiration      time.Time `json:"-"`
}

package core

import "time"

type Services struct {
	User       *UserService
	Session    *SessionService
	Connection *ConnectionService
}

func NewServices(db DB, assumer RoleAssumer, buckets BucketLister, sessionTTL time.Duration) *Services {
	return &Services{
		User:       NewUserService(db),
		Session:    NewSessionService(db, sessionTTL),
		Connection: NewConnectionService(db, assumer, buckets),
	}
}

package models

import (
	"time"

	ttlworker "github.com/FloatTech/ttl"

	"github.com/veritaslabs/veritas-gateway/types"
)

var (
	// UploadSessionTTL bounds how long a staged-but-unsubmitted review is kept.
	UploadSessionTTL = 60 * time.Minute

	uploadSessions = ttlworker.NewCache[string, *types.UploadSession](UploadSessionTTL)
)

// SetSessionTTL rebuilds the session cache with a new TTL. Call before any
// session is created (config load time).
func SetSessionTTL(ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	UploadSessionTTL = ttl
	uploadSessions = ttlworker.NewCache[string, *types.UploadSession](ttl)
}

// StoreUploadSession caches a session under its ID.
func StoreUploadSession(session *types.UploadSession) {
	uploadSessions.Set(session.ID, session)
}

// GetUploadSession looks a session up by ID.
func GetUploadSession(id string) (*types.UploadSession, bool) {
	session := uploadSessions.Get(id)
	if session == nil {
		return nil, false
	}
	return session, true
}

// RemoveUploadSession drops a session after navigation hands the results off.
func RemoveUploadSession(id string) {
	uploadSessions.Delete(id)
}

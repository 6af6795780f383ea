package domain

import "time"

// AccessTokenTTL is the lifetime of an access record. A login inside this
// window returns the existing record unchanged.
const AccessTokenTTL = 20 * time.Minute

// AccessRecord is the bearer session credential pair for a user. Both
// tokens are opaque high-entropy strings compared byte-for-byte against
// the stored values; rotation replaces the whole record.
type AccessRecord struct {
	ID           string    `json:"id" bson:"id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	AccessToken  string    `json:"access_token" bson:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty" bson:"refresh_token,omitempty"`
	CreatedAt    time.Time `json:"creation_time" bson:"creation_time"`
	ExpiresAt    time.Time `json:"expires" bson:"expires"`
}

// Expired reports whether the access window has elapsed.
func (r *AccessRecord) Expired(now time.Time) bool {
	return r == nil || !now.Before(r.ExpiresAt)
}

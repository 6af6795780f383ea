package domain

import "time"

// User represents a registered account. The access record is stored inline
// on the user document: at most one session credential exists per user.
type User struct {
	ID           string        `json:"id" bson:"id"`
	Username     string        `json:"username" bson:"username"`
	PasswordHash string        `json:"-" bson:"password"`
	Email        string        `json:"email" bson:"email"`
	AccessLevel  string        `json:"access_level" bson:"access_level"`
	Verification *Verification `json:"verify,omitempty" bson:"verify,omitempty"`
	AccessRecord *AccessRecord `json:"access_record,omitempty" bson:"access_record,omitempty"`
	FirstName    *string       `json:"first_name,omitempty" bson:"first_name,omitempty"`
	LastName     *string       `json:"last_name,omitempty" bson:"last_name,omitempty"`
	Address      *string       `json:"address,omitempty" bson:"address,omitempty"`
	PhoneNumber  *string       `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

// Verification holds the email-ownership proof issued once at registration.
// The token/code pair is generated a single time and never reissued.
type Verification struct {
	Verified       bool       `json:"verified" bson:"verified"`
	VerifyToken    string     `json:"verify_token" bson:"verify_token"`
	VerifyCode     string     `json:"verify_code" bson:"verify_code"`
	VerifyTime     *time.Time `json:"verify_time,omitempty" bson:"verify_time,omitempty"`
	ExpirationTime time.Time  `json:"expiration_time" bson:"expiration_time"`
}

// Matches reports whether the presented token/code pair is correct and the
// verification window is still open. It does not reveal which check failed.
func (v *Verification) Matches(token, code string, now time.Time) bool {
	if v == nil {
		return false
	}
	if !now.Before(v.ExpirationTime) {
		return false
	}
	return v.VerifyToken == token && v.VerifyCode == code
}

// Object is the generic identity-allocation record. Every user and OAuth
// link gets an id minted through an Object before the concrete record is
// written.
type Object struct {
	ID           string    `json:"id" bson:"id"`
	Type         string    `json:"type" bson:"the_type"`
	CreationTime time.Time `json:"creation_time" bson:"creation_time"`
}

// Object types known to the store.
const (
	ObjectTypeUser  = "user"
	ObjectTypeOAuth = "oauth"
)

// Access levels assigned at registration. Levels are opaque strings to
// this service; route-level authorization is out of scope.
const (
	AccessLevelSubscriber    = "subscriber"
	AccessLevelAdministrator = "administrator"
)

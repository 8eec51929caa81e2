package entity

import "time"

// RefreshToken is the server-side record that makes a signed refresh token
// revocable. ID is the jti claim of the signed token; a refresh token is
// only valid while its row exists and Revoked is false.
type RefreshToken struct {
	ID        string
	UserID    string
	Revoked   bool
	RevokedAt *time.Time
	CreatedAt time.Time
}

// RefreshTokenWithUser joins the owning user, loaded in one query so the
// refresh flow can check the owner's status without a second round trip.
type RefreshTokenWithUser struct {
	RefreshToken
	User User
}

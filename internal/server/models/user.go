package models

import "time"

// User is the credential record keyed by Email.
//
// OTPCode is empty and OTPExpiresAt is zero when no challenge is pending;
// the repository stores both as NULL in that case.
type User struct {
	ID           string
	Name         string
	Email        string
	Phone        string
	PasswordHash string
	Verified     bool
	OTPCode      string
	OTPExpiresAt time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPendingOTP reports whether a challenge is stored for the user.
func (u *User) HasPendingOTP() bool {
	return u.OTPCode != "" && !u.OTPExpiresAt.IsZero()
}

// ClearOTP drops the pending challenge.
func (u *User) ClearOTP() {
	u.OTPCode = ""
	u.OTPExpiresAt = time.Time{}
}

// PublicUser is the login response projection.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Profile is what a signed-in user may see about themselves.
type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone}
}

func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Verified:  u.Verified,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

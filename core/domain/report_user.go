package domain

import "time"

// User is a row of the existing users table. The report service only reads
// it; account lifecycle is owned by the auth stack upstream.
type User struct {
	UserID    string     `json:"user_id" db:"user_id"`
	Email     string     `json:"email" db:"email"`
	Nickname  string     `json:"nickname" db:"nickname"`
	Status    *string    `json:"status,omitempty" db:"status"`
	CreatedAt *time.Time `json:"created_at,omitempty" db:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty" db:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IsActive reports whether the user has not been soft-deleted.
func (u *User) IsActive() bool {
	return u.DeletedAt == nil
}

// DisplayName returns the nickname, falling back to the email address.
func (u *User) DisplayName() string {
	if u.Nickname != "" {
		return u.Nickname
	}
	return u.Email
}

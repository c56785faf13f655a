package models

import "time"

type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleOperator UserRole = "operator"
	RolePlayer   UserRole = "player"
)

// User identities are issued by the external auth provider; IDs are the
// provider's UUID strings.
type User struct {
	ID          string    `json:"id" db:"id"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Role        UserRole  `json:"role" db:"role"`
	AvatarKey   *string   `json:"-" db:"avatar_key"`
	AvatarURL   *string   `json:"avatar_url,omitempty" db:"-"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

package domain

import "time"

type Role string

const (
	RoleCivilian Role = "civilian"
	RolePolice   Role = "police"
)

type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"fullName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// PublicUser is the identity slice that is safe to fan out with a broadcast.
type PublicUser struct {
	ID       int64  `json:"id"`
	FullName string `json:"fullName"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, FullName: u.FullName}
}

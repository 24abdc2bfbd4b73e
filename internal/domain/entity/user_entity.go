package entity

import (
	"time"
)

// User is the aggregate root for the account domain
// Passwords are stored as bcrypt hashes in Password field
type User struct {
	ID           string
	Account      string
	Email        string
	Name         string
	Password     string
	Role         Role
	Avatar       string
	Cover        string
	Introduction string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the user without its password hash. It is what login,
// register and profile responses carry, and what a token embeds.
type PublicUser struct {
	ID           string    `json:"id"`
	Account      string    `json:"account"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Avatar       string    `json:"avatar"`
	Cover        string    `json:"cover"`
	Introduction string    `json:"introduction"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (u *User) Sanitized() PublicUser {
	return PublicUser{
		ID:           u.ID,
		Account:      u.Account,
		Name:         u.Name,
		Email:        u.Email,
		Avatar:       u.Avatar,
		Cover:        u.Cover,
		Introduction: u.Introduction,
		Role:         u.Role,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UserSummary is the short projection used in follower lists and search hits.
type UserSummary struct {
	ID           string `json:"id"`
	Account      string `json:"account"`
	Name         string `json:"name"`
	Avatar       string `json:"avatar"`
	Introduction string `json:"introduction"`
}

// UserRankRow is one row of the follower ranking as read from the store.
type UserRankRow struct {
	ID            string
	Account       string
	Name          string
	Avatar        string
	FollowerCount int
}

// Profile is the restricted user projection with its nested collections.
type Profile struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Account      string        `json:"account"`
	Email        string        `json:"email"`
	Avatar       string        `json:"avatar"`
	Cover        string        `json:"cover"`
	Introduction string        `json:"introduction"`
	Role         Role          `json:"role"`
	Tweets       []Tweet       `json:"Tweets"`
	Replies      []Reply       `json:"Replies"`
	Likes        []Like        `json:"Likes"`
	Followers    []UserSummary `json:"Followers"`
	Followings   []UserSummary `json:"Followings"`
}

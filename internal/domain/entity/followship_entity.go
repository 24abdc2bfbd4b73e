package entity

import "time"

// Followship is a directed edge: FollowerID follows FollowingID.
type Followship struct {
	FollowerID  string    `json:"followerId"`
	FollowingID string    `json:"followingId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Package user defines the user directory records consulted by the
// leaderboard on every submission and username lookup.
package user

import "time"

// User is a member of the player directory.
type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	JoinDate time.Time `json:"join_date"`
}

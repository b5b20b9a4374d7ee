// Package model holds the entities exchanged with the task service.
package model

import (
	"fmt"
	"slices"
)

type Role string

const (
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

type Category string

const (
	CategoryHigh   Category = "high"
	CategoryMedium Category = "medium"
	CategoryLow    Category = "low"
)

// Rank orders categories for display: high < medium < low.
// Unknown categories sort last.
func (c Category) Rank() int {
	switch c {
	case CategoryHigh:
		return 1
	case CategoryMedium:
		return 2
	case CategoryLow:
		return 3
	}
	return 4
}

func (c Category) Valid() bool {
	return c.Rank() < 4
}

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

type User struct {
	ID        string   `json:"_id"`
	Name      string   `json:"name"`
	Username  string   `json:"username,omitempty"`
	Email     string   `json:"email"`
	Role      Role     `json:"role"`
	Image     string   `json:"image,omitempty"`
	Followers []string `json:"followers"`
	Following []string `json:"following"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// FollowedBy reports whether userID is among u's followers.
func (u *User) FollowedBy(userID string) bool {
	return u != nil && userID != "" && slices.Contains(u.Followers, userID)
}

// DisplayName prefers the handle shown on profiles, falling back to the name.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Name
}

type Task struct {
	ID          string   `json:"_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	AssignedTo  string   `json:"assignTo"`
	IsCompleted bool     `json:"isCompleted"`
}

type Comment struct {
	ID   string `json:"_id"`
	User User   `json:"user"`
	Text string `json:"comment"`
}

// CanDelete reports whether viewerID authored the comment.
func (c Comment) CanDelete(viewerID string) bool {
	return viewerID != "" && c.User.ID == viewerID
}

type Post struct {
	ID       string    `json:"_id"`
	Image    string    `json:"image"`
	User     User      `json:"user"`
	Comments []Comment `json:"comments"`
}

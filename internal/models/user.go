package models

import "time"

type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Role     string `json:"role"` // student | committee | admin | super_admin
	Active   bool   `json:"active"`
	// Admin scope: fallback authorization + auto-assignment area.
	ScopeCategory string    `json:"scopeCategory,omitempty"`
	ScopeLocation string    `json:"scopeLocation,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

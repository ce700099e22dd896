package authz

import "campusdesk/internal/models"

// Level is the closed hierarchy of permission levels. Computed once per
// request from the role string and passed down instead of comparing role
// strings in every handler.
type Level int

const (
	LevelNone Level = iota
	LevelStudent
	LevelCommittee
	LevelAdmin
	LevelSuperAdmin
)

func LevelFor(role string) Level {
	switch role {
	case models.RoleStudent:
		return LevelStudent
	case models.RoleCommittee:
		return LevelCommittee
	case models.RoleAdmin:
		return LevelAdmin
	case models.RoleSuperAdmin:
		return LevelSuperAdmin
	default:
		return LevelNone
	}
}

func (l Level) AtLeast(min Level) bool { return l >= min }

// AdminLevel reports whether the level carries admin transition rights.
func (l Level) AdminLevel() bool { return l >= LevelAdmin }

func ValidRole(role string) bool { return LevelFor(role) != LevelNone }

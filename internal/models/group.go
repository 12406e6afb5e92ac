package models

// Group represents a named set of members who share expenses.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates").
	// Group names are unique.
	Name string

	// Members is the group's membership list.
	Members []Member

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// Member is one user's membership record within a group.
// A (user, group) pair is unique.
type Member struct {
	// UserID is the member's user account.
	UserID string

	// GroupID is the group this membership belongs to.
	GroupID string

	// Name is the member's display name, denormalized for rendering.
	Name string

	// JoinedAt is the Unix timestamp when the user joined the group.
	JoinedAt int64
}

// HasMember reports whether the user belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}

// MemberIDs returns the user IDs of all members.
func (g *Group) MemberIDs() []string {
	ids := make([]string, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.UserID
	}
	return ids
}

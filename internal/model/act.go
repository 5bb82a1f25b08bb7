package model

import "time"

// Act is the performing identity used in bookings, offers and
// performances.  One profile owns the act; additional profiles may be
// attached as members through the act_members table.  Both the owner and
// the members count as "members of the act" for reconfirmation purposes.
type Act struct {
	ID             string    // acts.id
	OwnerProfileID string    // acts.owner_profile_id
	Name           string    // acts.name
	CreatedAt      time.Time // acts.created_at
}

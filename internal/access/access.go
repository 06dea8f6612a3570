// Package access decides who may observe or moderate an event's chat room.
// It is the single source of truth consulted by both the REST facet and the
// realtime protocol.
package access

import "campus-flow/internal/models"

// Actor identifies the authenticated caller.
type Actor struct {
	UserID int
	Role   string
}

// Decision is the outcome of an access check for one (actor, event) pair.
type Decision struct {
	CanView     bool `json:"can_view"`
	CanModerate bool `json:"can_moderate"`
	IsBanned    bool `json:"is_banned"`
}

// Decide computes the access decision. registration is nil when the actor
// holds no registration for the event (including cancelled registrations).
//
// Precedence: admins first, then the event's organizer, then registration
// state. Admins and organizers are immune to bans.
func Decide(actor Actor, event models.Event, registration *models.Registration) Decision {
	if actor.Role == models.RoleAdmin {
		return Decision{CanView: true, CanModerate: true}
	}
	if actor.UserID == event.OrganizerID {
		return Decision{CanView: true, CanModerate: true}
	}

	banned := registration != nil && registration.IsBanned
	return Decision{
		CanView:  registration != nil && !banned,
		IsBanned: banned,
	}
}

// CanBanTarget reports whether targetUserID is a valid ban target for the
// event. The organizer can never be banned, regardless of caller role.
func CanBanTarget(event models.Event, targetUserID int) bool {
	return targetUserID != event.OrganizerID
}

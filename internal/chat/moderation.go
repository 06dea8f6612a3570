// Package chat implements the moderation operations shared by the REST facet
// and the realtime protocol. Both entry paths funnel through Moderator so the
// authorization check, the registration mutation, and the live eviction never
// diverge.
package chat

import (
	"context"
	"errors"

	"campus-flow/internal/access"
	"campus-flow/internal/models"
	"campus-flow/internal/repositories"
)

var (
	// ErrForbidden means the caller lacks the required permission.
	ErrForbidden = errors.New("not allowed")
	// ErrInvalidTarget means the ban targeted the event's organizer.
	ErrInvalidTarget = errors.New("cannot ban the event organizer")
)

// RoomNotifier delivers moderation side effects to live sessions. Implemented
// by the websocket hub; a ban must evict the target's session (when one
// exists) and notify the remaining room members.
type RoomNotifier interface {
	NotifyBan(eventID, targetUserID, bannedBy int)
	NotifyUnban(eventID, targetUserID int)
}

// Moderator applies ban and unban actions.
type Moderator struct {
	events        repositories.EventRepository
	registrations repositories.RegistrationRepository
	notifier      RoomNotifier
}

// NewModerator constructs a Moderator.
func NewModerator(events repositories.EventRepository, registrations repositories.RegistrationRepository, notifier RoomNotifier) *Moderator {
	return &Moderator{events: events, registrations: registrations, notifier: notifier}
}

// Ban marks the target's registration banned and evicts their live session.
// The registration change succeeds even when the target is not connected;
// eviction is a courtesy side effect.
func (m *Moderator) Ban(ctx context.Context, actor access.Actor, eventID, targetUserID int) (models.Registration, error) {
	event, err := m.authorize(ctx, actor, eventID)
	if err != nil {
		return models.Registration{}, err
	}
	if !access.CanBanTarget(event, targetUserID) {
		return models.Registration{}, ErrInvalidTarget
	}

	reg, err := m.registrations.SetBan(ctx, eventID, targetUserID, actor.UserID)
	if err != nil {
		return models.Registration{}, err
	}

	if m.notifier != nil {
		m.notifier.NotifyBan(eventID, targetUserID, actor.UserID)
	}
	return reg, nil
}

// Unban clears the target's ban fields. A no-op on non-banned registrations.
// The user is not re-admitted to the room; they must rejoin explicitly.
func (m *Moderator) Unban(ctx context.Context, actor access.Actor, eventID, targetUserID int) (models.Registration, error) {
	if _, err := m.authorize(ctx, actor, eventID); err != nil {
		return models.Registration{}, err
	}

	reg, err := m.registrations.ClearBan(ctx, eventID, targetUserID)
	if err != nil {
		return models.Registration{}, err
	}

	if m.notifier != nil {
		m.notifier.NotifyUnban(eventID, targetUserID)
	}
	return reg, nil
}

func (m *Moderator) authorize(ctx context.Context, actor access.Actor, eventID int) (models.Event, error) {
	event, err := m.events.GetEvent(ctx, eventID)
	if err != nil {
		return models.Event{}, err
	}

	reg, err := m.registrations.FindRegistration(ctx, actor.UserID, eventID)
	if err != nil {
		return models.Event{}, err
	}

	if !access.Decide(actor, event, reg).CanModerate {
		return models.Event{}, ErrForbidden
	}
	return event, nil
}

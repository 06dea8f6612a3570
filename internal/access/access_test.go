package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campus-flow/internal/models"
)

func publishedEvent(organizerID int) models.Event {
	return models.Event{ID: 10, Status: models.StatusPublished, OrganizerID: organizerID}
}

func TestDecideAdminAlwaysModerates(t *testing.T) {
	actor := Actor{UserID: 99, Role: models.RoleAdmin}

	d := Decide(actor, publishedEvent(5), nil)
	require.True(t, d.CanView)
	require.True(t, d.CanModerate)
	require.False(t, d.IsBanned)
}

func TestDecideAdminIgnoresBanRows(t *testing.T) {
	actor := Actor{UserID: 99, Role: models.RoleAdmin}
	now := time.Now()
	reg := &models.Registration{UserID: 99, EventID: 10, IsBanned: true, BannedAt: &now}

	d := Decide(actor, publishedEvent(5), reg)
	require.True(t, d.CanView)
	require.True(t, d.CanModerate)
	require.False(t, d.IsBanned)
}

func TestDecideOrganizerOwnEvent(t *testing.T) {
	actor := Actor{UserID: 5, Role: models.RoleOrganizer}

	d := Decide(actor, publishedEvent(5), nil)
	require.True(t, d.CanView)
	require.True(t, d.CanModerate)
}

func TestDecideOrganizerForeignEventNeedsRegistration(t *testing.T) {
	actor := Actor{UserID: 6, Role: models.RoleOrganizer}

	d := Decide(actor, publishedEvent(5), nil)
	require.False(t, d.CanView)
	require.False(t, d.CanModerate)
}

func TestDecideRegisteredStudentViewsOnly(t *testing.T) {
	actor := Actor{UserID: 2, Role: models.RoleStudent}
	reg := &models.Registration{UserID: 2, EventID: 10}

	d := Decide(actor, publishedEvent(5), reg)
	require.True(t, d.CanView)
	require.False(t, d.CanModerate)
	require.False(t, d.IsBanned)
}

func TestDecideBannedStudentCannotView(t *testing.T) {
	actor := Actor{UserID: 2, Role: models.RoleStudent}
	now := time.Now()
	reg := &models.Registration{UserID: 2, EventID: 10, IsBanned: true, BannedAt: &now}

	d := Decide(actor, publishedEvent(5), reg)
	require.False(t, d.CanView)
	require.False(t, d.CanModerate)
	require.True(t, d.IsBanned)
}

func TestDecideUnregisteredStudentCannotView(t *testing.T) {
	actor := Actor{UserID: 2, Role: models.RoleStudent}

	d := Decide(actor, publishedEvent(5), nil)
	require.False(t, d.CanView)
	require.False(t, d.IsBanned)
}

func TestCanBanTargetProtectsOrganizer(t *testing.T) {
	event := publishedEvent(5)

	require.False(t, CanBanTarget(event, 5))
	require.True(t, CanBanTarget(event, 2))
}

package ws

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-flow/internal/mocks"
	"campus-flow/internal/models"
)

func newTestRoomHandler(events *mocks.EventRepositoryMock, regs *mocks.RegistrationRepositoryMock, msgs *mocks.MessageRepositoryMock) (*RoomHandler, *Hub) {
	hub := NewHub()
	return NewRoomHandler(hub, nil, nil, events, regs, msgs, nil), hub
}

func TestSendRequiresJoinedRoom(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	h, _ := newTestRoomHandler(events, regs, msgs)

	s := &Session{UserID: 2, Role: models.RoleStudent}
	h.handleSend(context.Background(), s, 10, "hello")

	msgs.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendRejectsEmptyContent(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	h, hub := newTestRoomHandler(events, regs, msgs)

	s := &Session{UserID: 2, Role: models.RoleStudent}
	hub.Join(10, s)
	h.handleSend(context.Background(), s, 10, "   \n\t ")

	msgs.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendRejectsOverlongContent(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	h, hub := newTestRoomHandler(events, regs, msgs)

	s := &Session{UserID: 2, Role: models.RoleStudent}
	hub.Join(10, s)
	h.handleSend(context.Background(), s, 10, strings.Repeat("ё", models.MaxMessageLength+1))

	msgs.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSendAcceptsMaxLengthContent(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	h, hub := newTestRoomHandler(events, regs, msgs)

	s := &Session{UserID: 2, Role: models.RoleStudent}
	hub.Join(10, s)

	content := strings.Repeat("ё", models.MaxMessageLength)
	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5, Status: models.StatusPublished}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 2, 10).Return(&models.Registration{UserID: 2, EventID: 10}, nil).Once()
	msgs.On("CreateMessage", mock.Anything, 10, 2, content).Return(models.Message{ID: 1, EventID: 10, UserID: 2, Content: content}, nil).Once()

	h.handleSend(context.Background(), s, 10, content)
	msgs.AssertExpectations(t)
}

func TestSendBlockedAfterMidSessionBan(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	h, hub := newTestRoomHandler(events, regs, msgs)

	s := &Session{UserID: 2, Role: models.RoleStudent}
	hub.Join(10, s)

	now := time.Now()
	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 2, 10).Return(&models.Registration{UserID: 2, EventID: 10, IsBanned: true, BannedAt: &now}, nil).Once()

	h.handleSend(context.Background(), s, 10, "hello")
	msgs.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispatchUnknownTypeUsesFixedMetricLabel(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	h, _ := newTestRoomHandler(events, regs, msgs)

	s := &Session{UserID: 2, Role: models.RoleStudent}
	h.dispatch(context.Background(), s, []byte(`{"type":"zzz-made-up-action"}`))

	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	for _, fam := range families {
		if fam.GetName() != "campus_flow_ws_events_total" {
			continue
		}
		sawUnknown := false
		for _, metric := range fam.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() != "event" {
					continue
				}
				require.NotEqual(t, "zzz-made-up-action", label.GetValue())
				if label.GetValue() == "unknown" {
					sawUnknown = true
				}
			}
		}
		require.True(t, sawUnknown)
	}
}

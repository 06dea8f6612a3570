package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"campus-flow/internal/models"
	"campus-flow/internal/repositories"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, name, email, passwordHash, role string) (models.User, error) {
	args := m.Called(ctx, name, email, passwordHash, role)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) CreateEvent(ctx context.Context, event models.Event) (models.Event, error) {
	args := m.Called(ctx, event)
	var created models.Event
	if val := args.Get(0); val != nil {
		created = val.(models.Event)
	}
	return created, args.Error(1)
}

func (m *EventRepositoryMock) GetEvent(ctx context.Context, eventID int) (models.Event, error) {
	args := m.Called(ctx, eventID)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) GetEventSummary(ctx context.Context, eventID int) (models.EventSummary, error) {
	args := m.Called(ctx, eventID)
	var summary models.EventSummary
	if val := args.Get(0); val != nil {
		summary = val.(models.EventSummary)
	}
	return summary, args.Error(1)
}

func (m *EventRepositoryMock) ListPublishedEvents(ctx context.Context, filter repositories.EventFilter) ([]models.EventSummary, error) {
	args := m.Called(ctx, filter)
	var list []models.EventSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.EventSummary)
	}
	return list, args.Error(1)
}

func (m *EventRepositoryMock) ListEventsByOrganizer(ctx context.Context, organizerID int) ([]models.EventSummary, error) {
	args := m.Called(ctx, organizerID)
	var list []models.EventSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.EventSummary)
	}
	return list, args.Error(1)
}

func (m *EventRepositoryMock) UpdateEventStatus(ctx context.Context, eventID int, status string) (models.Event, error) {
	args := m.Called(ctx, eventID, status)
	var event models.Event
	if val := args.Get(0); val != nil {
		event = val.(models.Event)
	}
	return event, args.Error(1)
}

func (m *EventRepositoryMock) ListRoomsForAdmin(ctx context.Context) ([]models.RoomSummary, error) {
	args := m.Called(ctx)
	var list []models.RoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomSummary)
	}
	return list, args.Error(1)
}

func (m *EventRepositoryMock) ListRoomsForOrganizer(ctx context.Context, organizerID int) ([]models.RoomSummary, error) {
	args := m.Called(ctx, organizerID)
	var list []models.RoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomSummary)
	}
	return list, args.Error(1)
}

func (m *EventRepositoryMock) ListRoomsForStudent(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.RoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomSummary)
	}
	return list, args.Error(1)
}

type RegistrationRepositoryMock struct {
	mock.Mock
}

func (m *RegistrationRepositoryMock) CreateRegistration(ctx context.Context, userID, eventID int) (models.Registration, error) {
	args := m.Called(ctx, userID, eventID)
	var reg models.Registration
	if val := args.Get(0); val != nil {
		reg = val.(models.Registration)
	}
	return reg, args.Error(1)
}

func (m *RegistrationRepositoryMock) FindRegistration(ctx context.Context, userID, eventID int) (*models.Registration, error) {
	args := m.Called(ctx, userID, eventID)
	var reg *models.Registration
	if val := args.Get(0); val != nil {
		reg = val.(*models.Registration)
	}
	return reg, args.Error(1)
}

func (m *RegistrationRepositoryMock) ListRegistrationsForUser(ctx context.Context, userID int) ([]models.Registration, error) {
	args := m.Called(ctx, userID)
	var list []models.Registration
	if val := args.Get(0); val != nil {
		list = val.([]models.Registration)
	}
	return list, args.Error(1)
}

func (m *RegistrationRepositoryMock) DeleteRegistration(ctx context.Context, userID, eventID int) error {
	args := m.Called(ctx, userID, eventID)
	return args.Error(0)
}

func (m *RegistrationRepositoryMock) ListParticipants(ctx context.Context, eventID int) ([]models.Participant, error) {
	args := m.Called(ctx, eventID)
	var list []models.Participant
	if val := args.Get(0); val != nil {
		list = val.([]models.Participant)
	}
	return list, args.Error(1)
}

func (m *RegistrationRepositoryMock) SetBan(ctx context.Context, eventID, targetUserID, bannedBy int) (models.Registration, error) {
	args := m.Called(ctx, eventID, targetUserID, bannedBy)
	var reg models.Registration
	if val := args.Get(0); val != nil {
		reg = val.(models.Registration)
	}
	return reg, args.Error(1)
}

func (m *RegistrationRepositoryMock) ClearBan(ctx context.Context, eventID, targetUserID int) (models.Registration, error) {
	args := m.Called(ctx, eventID, targetUserID)
	var reg models.Registration
	if val := args.Get(0); val != nil {
		reg = val.(models.Registration)
	}
	return reg, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, eventID, userID int, content string) (models.Message, error) {
	args := m.Called(ctx, eventID, userID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) GetMessage(ctx context.Context, messageID int) (models.Message, error) {
	args := m.Called(ctx, messageID)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, eventID int, limit int, before *time.Time) ([]models.ChatMessage, error) {
	args := m.Called(ctx, eventID, limit, before)
	var list []models.ChatMessage
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatMessage)
	}
	return list, args.Error(1)
}

func (m *MessageRepositoryMock) SoftDeleteMessage(ctx context.Context, messageID int) error {
	args := m.Called(ctx, messageID)
	return args.Error(0)
}

type ThemeRepositoryMock struct {
	mock.Mock
}

func (m *ThemeRepositoryMock) GetTheme(ctx context.Context) (models.Theme, error) {
	args := m.Called(ctx)
	var theme models.Theme
	if val := args.Get(0); val != nil {
		theme = val.(models.Theme)
	}
	return theme, args.Error(1)
}

func (m *ThemeRepositoryMock) UpdateTheme(ctx context.Context, theme models.Theme) (models.Theme, error) {
	args := m.Called(ctx, theme)
	var updated models.Theme
	if val := args.Get(0); val != nil {
		updated = val.(models.Theme)
	}
	return updated, args.Error(1)
}

type AuditPublisherMock struct {
	mock.Mock
}

func (m *AuditPublisherMock) Publish(ctx context.Context, routingKey string, event any) error {
	args := m.Called(ctx, routingKey, event)
	return args.Error(0)
}

func (m *AuditPublisherMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

type RoomNotifierMock struct {
	mock.Mock
}

func (m *RoomNotifierMock) NotifyBan(eventID, targetUserID, bannedBy int) {
	m.Called(eventID, targetUserID, bannedBy)
}

func (m *RoomNotifierMock) NotifyUnban(eventID, targetUserID int) {
	m.Called(eventID, targetUserID)
}

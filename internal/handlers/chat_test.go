package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-flow/internal/chat"
	"campus-flow/internal/mocks"
	"campus-flow/internal/models"
	"campus-flow/internal/repositories"
)

func setupChatRouter(handler *ChatHandler, userID int, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", userID)
		c.Set("userRole", role)
		c.Next()
	})
	r.GET("/chat/my-rooms", handler.MyRooms)
	r.GET("/chat/:event_id/messages", handler.GetMessages)
	r.GET("/chat/:event_id/access", handler.GetAccess)
	r.GET("/chat/:event_id/participants", handler.GetParticipants)
	r.POST("/chat/:event_id/ban/:user_id", handler.BanUser)
	r.DELETE("/chat/:event_id/ban/:user_id", handler.UnbanUser)
	return r
}

func newChatHandler(events *mocks.EventRepositoryMock, regs *mocks.RegistrationRepositoryMock, msgs *mocks.MessageRepositoryMock) *ChatHandler {
	moderator := chat.NewModerator(events, regs, nil)
	return NewChatHandler(events, regs, msgs, moderator, nil)
}

func TestMyRoomsRoleSwitch(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)

	events.On("ListRoomsForAdmin", mock.Anything).Return([]models.RoomSummary{{EventID: 1}}, nil).Once()
	router := setupChatRouter(handler, 9, models.RoleAdmin)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/my-rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	events.On("ListRoomsForStudent", mock.Anything, 2).Return([]models.RoomSummary{}, nil).Once()
	router = setupChatRouter(handler, 2, models.RoleStudent)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/my-rooms", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	events.AssertExpectations(t)
}

func TestGetMessagesDefaultLimit(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 2, models.RoleStudent)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5, Status: models.StatusPublished}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 2, 10).Return(&models.Registration{UserID: 2, EventID: 10}, nil).Once()
	msgs.On("ListMessages", mock.Anything, 10, 50, (*time.Time)(nil)).Return([]models.ChatMessage{}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/10/messages", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	msgs.AssertExpectations(t)
}

func TestGetMessagesLimitCappedAndCursor(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 2, models.RoleStudent)

	cursor := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 2, 10).Return(&models.Registration{UserID: 2, EventID: 10}, nil).Once()
	msgs.On("ListMessages", mock.Anything, 10, 100, &cursor).Return([]models.ChatMessage{}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/10/messages?limit=500&before=2026-03-01T12:00:00Z", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	msgs.AssertExpectations(t)
}

func TestGetMessagesBannedUser(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 2, models.RoleStudent)

	now := time.Now()
	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 2, 10).Return(&models.Registration{UserID: 2, EventID: 10, IsBanned: true, BannedAt: &now}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/10/messages", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	msgs.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestGetMessagesInvalidCursor(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 2, models.RoleStudent)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 2, 10).Return(&models.Registration{UserID: 2, EventID: 10}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/10/messages?before=yesterday", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAccessFlags(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 5, models.RoleOrganizer)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 5, 10).Return(nil, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/10/access", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var flags map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &flags))
	require.True(t, flags["can_view"])
	require.True(t, flags["can_moderate"])
	require.True(t, flags["is_organizer"])
	require.False(t, flags["is_admin"])
	require.False(t, flags["is_banned"])
}

func TestGetParticipantsRequiresModerator(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 2, models.RoleStudent)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 2, 10).Return(&models.Registration{UserID: 2, EventID: 10}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat/10/participants", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
	regs.AssertNotCalled(t, "ListParticipants", mock.Anything, mock.Anything)
}

func TestBanUserSuccess(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 5, models.RoleOrganizer)

	now := time.Now()
	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 5, 10).Return(nil, nil).Once()
	regs.On("SetBan", mock.Anything, 10, 2, 5).Return(models.Registration{UserID: 2, EventID: 10, IsBanned: true, BannedAt: &now}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat/10/ban/2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	regs.AssertExpectations(t)
}

func TestBanOrganizerReturnsBadRequest(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 9, models.RoleAdmin)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 9, 10).Return(nil, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat/10/ban/5", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBanUnregisteredTargetReturnsNotFound(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 5, models.RoleOrganizer)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 5, 10).Return(nil, nil).Once()
	regs.On("SetBan", mock.Anything, 10, 7, 5).Return(models.Registration{}, repositories.ErrRegistrationNotFound).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat/10/ban/7", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBanByStudentForbidden(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 2, models.RoleStudent)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 2, 10).Return(&models.Registration{UserID: 2, EventID: 10}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/chat/10/ban/3", nil))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUnbanUserSuccess(t *testing.T) {
	events := new(mocks.EventRepositoryMock)
	regs := new(mocks.RegistrationRepositoryMock)
	msgs := new(mocks.MessageRepositoryMock)
	handler := newChatHandler(events, regs, msgs)
	router := setupChatRouter(handler, 5, models.RoleOrganizer)

	events.On("GetEvent", mock.Anything, 10).Return(models.Event{ID: 10, OrganizerID: 5}, nil).Once()
	regs.On("FindRegistration", mock.Anything, 5, 10).Return(nil, nil).Once()
	regs.On("ClearBan", mock.Anything, 10, 2).Return(models.Registration{UserID: 2, EventID: 10}, nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/chat/10/ban/2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	regs.AssertExpectations(t)
}

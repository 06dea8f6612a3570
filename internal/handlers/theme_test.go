package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-flow/internal/mocks"
	"campus-flow/internal/models"
)

func setupThemeRouter(handler *ThemeHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/theme", handler.GetTheme)
	r.PATCH("/theme", handler.UpdateTheme)
	return r
}

func defaultTheme() models.Theme {
	return models.Theme{
		ID:             1,
		Name:           "stranger-things",
		PrimaryColor:   "#8B0000",
		SecondaryColor: "#FF6B6B",
		Background:     "#0a0a0a",
		Font:           "pixel",
		Effects:        pq.StringArray{"glitch", "flicker"},
	}
}

func TestGetTheme(t *testing.T) {
	themes := new(mocks.ThemeRepositoryMock)
	router := setupThemeRouter(NewThemeHandler(themes))

	themes.On("GetTheme", mock.Anything).Return(defaultTheme(), nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/theme", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Theme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "stranger-things", got.Name)
}

func TestUpdateThemeRenamePersisted(t *testing.T) {
	themes := new(mocks.ThemeRepositoryMock)
	router := setupThemeRouter(NewThemeHandler(themes))

	themes.On("GetTheme", mock.Anything).Return(defaultTheme(), nil).Once()
	themes.On("UpdateTheme", mock.Anything, mock.MatchedBy(func(th models.Theme) bool {
		return th.Name == "retro-wave" && th.Font == "pixel"
	})).Return(func() models.Theme {
		th := defaultTheme()
		th.Name = "retro-wave"
		return th
	}(), nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/theme", bytes.NewBufferString(`{"name":"retro-wave"}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	var got models.Theme
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, "retro-wave", got.Name)
	themes.AssertExpectations(t)
}

func TestUpdateThemePartialKeepsOtherFields(t *testing.T) {
	themes := new(mocks.ThemeRepositoryMock)
	router := setupThemeRouter(NewThemeHandler(themes))

	themes.On("GetTheme", mock.Anything).Return(defaultTheme(), nil).Once()
	themes.On("UpdateTheme", mock.Anything, mock.MatchedBy(func(th models.Theme) bool {
		return th.PrimaryColor == "#112233" &&
			th.Name == "stranger-things" &&
			th.Background == "#0a0a0a"
	})).Return(defaultTheme(), nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/theme", bytes.NewBufferString(`{"primary_color":"#112233"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	themes.AssertExpectations(t)
}

func TestUpdateThemeRejectsUnknownFont(t *testing.T) {
	themes := new(mocks.ThemeRepositoryMock)
	router := setupThemeRouter(NewThemeHandler(themes))

	themes.On("GetTheme", mock.Anything).Return(defaultTheme(), nil).Once()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/theme", bytes.NewBufferString(`{"font":"comic-sans"}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	themes.AssertNotCalled(t, "UpdateTheme", mock.Anything, mock.Anything)
}

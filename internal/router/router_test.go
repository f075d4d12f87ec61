package router

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/nanafes/reservation-api/internal/booking"
	"github.com/nanafes/reservation-api/internal/handler"
	"github.com/nanafes/reservation-api/internal/line"
	"github.com/nanafes/reservation-api/internal/model"
	"github.com/nanafes/reservation-api/internal/repository"
	"github.com/nanafes/reservation-api/internal/utils"
)

const (
	testSecret = "router-test-secret"
	testOwner  = "U_owner_777"
)

// stubStore serves fixed data so route registration and the middleware
// chain can be exercised without a database.
type stubStore struct{}

func (stubStore) WithinTx(ctx context.Context, fn func(tx booking.Tx) error) error {
	return sql.ErrConnDone
}

func (stubStore) SlotByID(ctx context.Context, id uint64) (*model.TimeSlot, error) {
	return nil, sql.ErrNoRows
}

func (stubStore) ListSlots(ctx context.Context, w model.SlotWindow) ([]model.TimeSlot, error) {
	return []model.TimeSlot{}, nil
}

func (stubStore) ReservationByID(ctx context.Context, id uint64) (*model.ReservationDetail, error) {
	owner := testOwner
	return &model.ReservationDetail{
		Reservation: &model.Reservation{ID: id, OwnerID: &owner, StartTime: time.Now().Add(time.Hour).UTC()},
	}, nil
}

func (stubStore) TeamByID(ctx context.Context, id uint64) (*model.Team, error) {
	return &model.Team{ID: id, ReservationID: 1, Name: "gophers", Headcount: 2}, nil
}

func (stubStore) ActiveReservation(ctx context.Context, ownerID string, now time.Time) (*model.ReservationDetail, error) {
	return nil, sql.ErrNoRows
}

func (stubStore) NextAvailableSlot(ctx context.Context, from time.Time) (*model.TimeSlot, error) {
	return nil, sql.ErrNoRows
}

func newTestRouter(t *testing.T, apiKeyHash string) *echo.Echo {
	t.Helper()
	store := stubStore{}
	svc := booking.NewService(store, nil)
	query := booking.NewQuery(store, time.Time{})
	lineClient := line.New("", "")

	e := echo.New()
	Register(e, Handlers{
		Health:      func(c echo.Context) error { return c.NoContent(http.StatusOK) },
		Auth:        handler.NewAuthHandler(lineClient, testSecret, 5),
		TimeSlots:   handler.NewTimeSlotHandler(query, repository.NewTimeSlotRepo(nil)),
		Reservation: handler.NewReservationHandler(svc, query),
		Team:        handler.NewTeamHandler(svc, query),
		Score:       handler.NewScoreHandler(repository.NewScoreRepo(nil), nil),
		Webhook:     handler.NewWebhookHandler(lineClient, query, nil),
	}, testSecret, apiKeyHash)
	return e
}

func TestReservationDetail_AnonymousRejected(t *testing.T) {
	e := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/reservations/1", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), testOwner)
}

func TestReservationDetail_UserAndMachineAllowed(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("desk-key"), bcrypt.MinCost)
	require.NoError(t, err)
	e := newTestRouter(t, string(hash))

	tok, err := utils.NewSessionToken(testSecret, "U1", 5)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/v1/reservations/1", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), testOwner)

	req = httptest.NewRequest(http.MethodGet, "/v1/reservations/1", nil)
	req.Header.Set("X-API-KEY", "desk-key")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTeamRoutes_AnonymousRejected(t *testing.T) {
	e := newTestRouter(t, "")

	for _, method := range []string{http.MethodGet, http.MethodPatch} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(method, "/v1/teams/1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, method)
	}
}

func TestSlotBrowsing_StaysPublic(t *testing.T) {
	e := newTestRouter(t, "")

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/timeslots", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nanafes/reservation-api/internal/booking"
	"github.com/nanafes/reservation-api/internal/repository"
)

func TestRespondError_StatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{booking.ErrNotFound, http.StatusNotFound},
		{booking.ErrSlotNotReservable, http.StatusBadRequest},
		{booking.ErrPastReservation, http.StatusBadRequest},
		{booking.ErrInvalidArgument, http.StatusBadRequest},
		{booking.ErrSlotTaken, http.StatusConflict},
		{booking.ErrAlreadyReserved, http.StatusConflict},
		{booking.ErrTeamExists, http.StatusConflict},
		{repository.ErrConflict, http.StatusConflict},
		{booking.ErrForbidden, http.StatusForbidden},
		{booking.ErrUnauthorized, http.StatusUnauthorized},
		{errors.New("driver broke"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(req, rec)
			require.NoError(t, respondError(c, tc.err))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

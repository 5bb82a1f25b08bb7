package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gig-booking/internal/model"
	"github.com/iliyamo/gig-booking/internal/service"
)

type mockLifecycle struct{ mock.Mock }

func (m *mockLifecycle) AcceptBooking(ctx context.Context, req service.AcceptBookingRequest) (service.AcceptResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.AcceptResult), args.Error(1)
}

func (m *mockLifecycle) DeclineBooking(ctx context.Context, req service.DeclineBookingRequest) (service.RequestResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.RequestResult), args.Error(1)
}

func (m *mockLifecycle) AcceptOffer(ctx context.Context, req service.AcceptOfferRequest) (service.AcceptResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.AcceptResult), args.Error(1)
}

func (m *mockLifecycle) DeclineOffer(ctx context.Context, req service.DeclineOfferRequest) (service.RequestResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.RequestResult), args.Error(1)
}

func (m *mockLifecycle) UpdateEventCore(ctx context.Context, req service.UpdateEventCoreRequest) (service.UpdateEventCoreResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.UpdateEventCoreResult), args.Error(1)
}

func (m *mockLifecycle) OrganizerCancelPerformance(ctx context.Context, req service.CancelPerformanceRequest) (service.PerformanceResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.PerformanceResult), args.Error(1)
}

func (m *mockLifecycle) ReconfirmPerformance(ctx context.Context, req service.PerformanceRequest) (service.PerformanceResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.PerformanceResult), args.Error(1)
}

func (m *mockLifecycle) DeclineReconfirmPerformance(ctx context.Context, req service.PerformanceRequest) (service.PerformanceResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(service.PerformanceResult), args.Error(1)
}

func (m *mockLifecycle) SetPrepTaskDone(ctx context.Context, req service.SetPrepTaskDoneRequest) (*model.PrepTask, error) {
	args := m.Called(ctx, req)
	task, _ := args.Get(0).(*model.PrepTask)
	return task, args.Error(1)
}

func (m *mockLifecycle) GetPerformance(ctx context.Context, id string) (*model.Performance, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*model.Performance)
	return p, args.Error(1)
}

func (m *mockLifecycle) ListEventPerformances(ctx context.Context, eventID string) ([]model.Performance, error) {
	args := m.Called(ctx, eventID)
	list, _ := args.Get(0).([]model.Performance)
	return list, args.Error(1)
}

func do(t *testing.T, h echo.HandlerFunc, method, path, route, body string, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath(route)
	if len(params) > 0 {
		c.SetParamNames("id")
		c.SetParamValues(params...)
	}
	require.NoError(t, h(c))
	return rec
}

func TestAcceptBookingHandler(t *testing.T) {
	svc := &mockLifecycle{}
	h := NewLifecycleHandler(svc)
	svc.On("AcceptBooking", mock.Anything, service.AcceptBookingRequest{BookingID: "b1"}).
		Return(service.AcceptResult{PerformanceID: "p1"}, nil).Once()

	rec := do(t, h.AcceptBooking, http.MethodPost, "/v1/bookings/b1/accept", "/v1/bookings/:id/accept", "", "b1")
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"performance_id":"p1"}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{service.ErrUnauthenticated, http.StatusUnauthorized, "unauthenticated"},
		{service.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("booking b1: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{service.ErrAlreadyAccepted, http.StatusConflict, "already_accepted"},
		{service.ErrInvalidTransition, http.StatusConflict, "invalid_transition"},
		{service.ErrConflict, http.StatusConflict, "conflict"},
		{service.ErrInvalidArgument, http.StatusBadRequest, "invalid_argument"},
		{fmt.Errorf("%w: disk full", service.ErrStoreFailure), http.StatusInternalServerError, "store_failure"},
	}
	for _, tc := range cases {
		svc := &mockLifecycle{}
		svc.On("ReconfirmPerformance", mock.Anything, service.PerformanceRequest{PerformanceID: "p1"}).
			Return(service.PerformanceResult{}, tc.err)

		rec := do(t, NewLifecycleHandler(svc).ReconfirmPerformance, http.MethodPost,
			"/v1/performances/p1/reconfirm", "/v1/performances/:id/reconfirm", "", "p1")
		assert.Equal(t, tc.status, rec.Code, tc.code)
		assert.Contains(t, rec.Body.String(), `"error":"`+tc.code+`"`)
	}
}

func TestStoreFailureHidesDetails(t *testing.T) {
	svc := &mockLifecycle{}
	svc.On("GetPerformance", mock.Anything, "p1").Return(nil, fmt.Errorf("%w: dsn secret leaked", service.ErrStoreFailure))

	rec := do(t, NewLifecycleHandler(svc).GetPerformance, http.MethodGet, "/v1/performances/p1", "/v1/performances/:id", "", "p1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
}

func TestUpdateEventCoreHandler(t *testing.T) {
	svc := &mockLifecycle{}
	h := NewLifecycleHandler(svc)
	svc.On("UpdateEventCore", mock.Anything, service.UpdateEventCoreRequest{
		EventID: "e1", Date: time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), VenueID: "v1",
	}).Return(service.UpdateEventCoreResult{
		Changed: true, Reason: model.ReasonDateChanged, AffectedPerformanceIDs: []string{"p1", "p2"},
	}, nil).Once()

	rec := do(t, h.UpdateEventCore, http.MethodPatch, "/v1/events/e1/core", "/v1/events/:id/core",
		`{"date":"2024-05-08","venue_id":"v1"}`, "e1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"changed":true,"reason":"EVENT_DATE_CHANGED","affected_performance_ids":["p1","p2"]}`, rec.Body.String())
	svc.AssertExpectations(t)
}

func TestUpdateEventCoreRejectsBadInput(t *testing.T) {
	svc := &mockLifecycle{}
	h := NewLifecycleHandler(svc)

	for _, body := range []string{
		`{"date":"next tuesday","venue_id":"v1"}`,
		`{"date":"2024-05-08","venue_id":" "}`,
		`{"date":`,
	} {
		rec := do(t, h.UpdateEventCore, http.MethodPatch, "/v1/events/e1/core", "/v1/events/:id/core", body, "e1")
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
	svc.AssertNotCalled(t, "UpdateEventCore", mock.Anything, mock.Anything)
}

func TestCancelPerformanceHandler(t *testing.T) {
	reason := model.ReasonOrganizerCanceled
	svc := &mockLifecycle{}
	h := NewLifecycleHandler(svc)
	svc.On("OrganizerCancelPerformance", mock.Anything, service.CancelPerformanceRequest{PerformanceID: "p1"}).
		Return(service.PerformanceResult{PerformanceID: "p1", Status: model.PerformanceCanceled, Reason: &reason}, nil).Once()
	svc.On("OrganizerCancelPerformance", mock.Anything, service.CancelPerformanceRequest{PerformanceID: "p2", Reason: "STORM"}).
		Return(service.PerformanceResult{}, service.ErrInvalidTransition).Once()

	rec := do(t, h.CancelPerformance, http.MethodPost, "/v1/performances/p1/cancel", "/v1/performances/:id/cancel", "", "p1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"performance_id":"p1","status":"canceled","reason":"ORGANIZER_CANCELED"}`, rec.Body.String())

	rec = do(t, h.CancelPerformance, http.MethodPost, "/v1/performances/p2/cancel", "/v1/performances/:id/cancel", `{"reason":"STORM"}`, "p2")
	assert.Equal(t, http.StatusConflict, rec.Code)
	svc.AssertExpectations(t)
}

func TestSetPrepTaskDoneHandler(t *testing.T) {
	svc := &mockLifecycle{}
	h := NewLifecycleHandler(svc)
	by := "m1"
	svc.On("SetPrepTaskDone", mock.Anything, service.SetPrepTaskDoneRequest{TaskID: "t1", Done: true}).
		Return(&model.PrepTask{ID: "t1", PerformanceID: "p1", TaskKey: "soundcheck", IsDone: true, DoneByProfileID: &by}, nil).Once()

	rec := do(t, h.SetPrepTaskDone, http.MethodPatch, "/v1/prep-tasks/t1", "/v1/prep-tasks/:id", `{"done":true}`, "t1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"is_done":true`)

	rec = do(t, h.SetPrepTaskDone, http.MethodPatch, "/v1/prep-tasks/t1", "/v1/prep-tasks/:id", `{}`, "t1")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	svc.AssertExpectations(t)
}

func TestListEventPerformancesHandler(t *testing.T) {
	svc := &mockLifecycle{}
	h := NewLifecycleHandler(svc)
	date := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	svc.On("ListEventPerformances", mock.Anything, "e1").Return([]model.Performance{
		{ID: "p1", EventID: "e1", ActID: "a1", EventDate: date, VenueID: "v1", Status: model.PerformanceConfirmed},
	}, nil).Once()

	rec := do(t, h.ListEventPerformances, http.MethodGet, "/v1/events/e1/performances", "/v1/events/:id/performances", "", "e1")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)
	assert.Contains(t, rec.Body.String(), `"event_date":"2024-05-01T00:00:00Z"`)
}

func TestParseEventDate(t *testing.T) {
	d, err := parseEventDate("2024-05-08T20:00:00+02:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 8, 18, 0, 0, 0, time.UTC), d)

	d, err = parseEventDate("2024-05-08")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC), d)

	_, err = parseEventDate("")
	assert.Error(t, err)
}

type pingFunc func(context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestReady(t *testing.T) {
	rec := do(t, Ready(pingFunc(func(context.Context) error { return nil })), http.MethodGet, "/readyz", "/readyz", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, Ready(pingFunc(func(context.Context) error { return errors.New("down") })), http.MethodGet, "/readyz", "/readyz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBodyWithoutContentTypeIsUnsupportedMediaType(t *testing.T) {
	svc := &mockLifecycle{}
	h := NewLifecycleHandler(svc)
	e := echo.New()

	for _, tc := range []struct {
		handler echo.HandlerFunc
		method  string
		route   string
		body    string
	}{
		{h.CancelPerformance, http.MethodPost, "/v1/performances/:id/cancel", `{"reason":"X"}`},
		{h.UpdateEventCore, http.MethodPatch, "/v1/events/:id/core", `{"date":"2024-05-08","venue_id":"v1"}`},
		{h.SetPrepTaskDone, http.MethodPatch, "/v1/prep-tasks/:id", `{"done":true}`},
	} {
		req := httptest.NewRequest(tc.method, "/", strings.NewReader(tc.body))
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath(tc.route)
		c.SetParamNames("id")
		c.SetParamValues("x1")

		require.NoError(t, tc.handler(c))
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code, tc.route)
		assert.Contains(t, rec.Body.String(), `"error":"unsupported_media_type"`, tc.route)
	}
	svc.AssertNotCalled(t, "OrganizerCancelPerformance", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "UpdateEventCore", mock.Anything, mock.Anything)
	svc.AssertNotCalled(t, "SetPrepTaskDone", mock.Anything, mock.Anything)
}

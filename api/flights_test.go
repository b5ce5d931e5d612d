package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightinfo/internal/datetime"
	"github.com/Domenick1991/flightinfo/internal/domain"
	"github.com/Domenick1991/flightinfo/internal/flightjson"
	"github.com/Domenick1991/flightinfo/internal/service/flights"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Get(ctx context.Context, flightNumber string) (*domain.Flight, error) {
	args := m.Called(ctx, flightNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Add(ctx context.Context, flight domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightUseCase) Remove(ctx context.Context, flightNumber string) error {
	args := m.Called(ctx, flightNumber)
	return args.Error(0)
}

func (m *MockFlightUseCase) Load(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightUseCase) Save(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockFlightUseCase) ByAirline(ctx context.Context, airline string) []domain.Flight {
	args := m.Called(ctx, airline)
	return args.Get(0).([]domain.Flight)
}

func (m *MockFlightUseCase) Delayed(ctx context.Context) []domain.Flight {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight)
}

func (m *MockFlightUseCase) ByDepartureDate(ctx context.Context, date string) []domain.Flight {
	args := m.Called(ctx, date)
	return args.Get(0).([]domain.Flight)
}

func (m *MockFlightUseCase) ByTimeRangeAndDestination(ctx context.Context, start, end, destination string) ([]domain.Flight, error) {
	args := m.Called(ctx, start, end, destination)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) ArrivedInWindow(ctx context.Context, end string, windowHours float64) ([]domain.Flight, error) {
	args := m.Called(ctx, end, windowHours)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

type decodedResponse struct {
	Flights []map[string]any `json:"flights"`
	Warning string           `json:"warning"`
}

func newTestRouter(service flights.FlightUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewFlightHandler(service, flightjson.NewCodec(time.UTC)).Register(router.Group("/flights"))
	return router
}

func serve(router *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) decodedResponse {
	t.Helper()
	var resp decodedResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleFlight(number string) domain.Flight {
	dep := time.Date(2023, 6, 15, 10, 0, 0, 0, time.UTC)
	return domain.Flight{
		FlightNumber:  domain.StringPtr(number),
		Airline:       domain.StringPtr("WizAir"),
		Destination:   domain.StringPtr("New York"),
		DepartureTime: dep,
		ArrivalTime:   dep.Add(2 * time.Hour),
		Status:        domain.FlightStatusDelayed,
		Duration:      2 * time.Hour,
	}
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService, flightjson.NewCodec(time.UTC))

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/flights", nil)

	mockService.On("List", c.Request.Context()).Return([]domain.Flight{sampleFlight("W6 1")}, nil)

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Len(t, resp.Flights, 1)
	assert.Equal(t, "W6 1", resp.Flights[0]["FlightNumber"])
	assert.Equal(t, "Delayed", resp.Flights[0]["Status"])
	assert.Equal(t, "02:00:00", resp.Flights[0]["Duration"])

	mockService.AssertExpectations(t)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newTestRouter(mockService)

	flight := sampleFlight("FL1")
	mockService.On("Get", mock.Anything, "FL1").Return(&flight, nil)
	mockService.On("Get", mock.Anything, "FL9").Return(nil, fmt.Errorf("%w: FL9", flights.ErrFlightNotFound))

	w := serve(router, http.MethodGet, "/flights/FL1", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"FlightNumber":"FL1"`)

	w = serve(router, http.MethodGet, "/flights/FL9", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_add(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newTestRouter(mockService)

	body := `{"FlightNumber":"FL123","Airline":"Airline1","Destination":"Destination1",
		"DepartureTime":"2023-06-15T10:00:00Z","ArrivalTime":"2023-06-15T12:00:00Z",
		"Status":"OnTime","Duration":"02:00:00","AircraftType":"Boeing 747","Terminal":null}`

	mockService.On("Add", mock.Anything, mock.MatchedBy(func(f domain.Flight) bool {
		return f.Number() == "FL123" && f.Terminal == nil && f.Duration == 2*time.Hour
	})).Return(nil).Once()

	w := serve(router, http.MethodPost, "/flights/", body)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = serve(router, http.MethodPost, "/flights/", `{"Status":"Landed"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(router, http.MethodPost, "/flights/", `{"FlightNumber":"FL1","DepartureTime":"tomorrow"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_addZonelessTimesUseCodecLocation(t *testing.T) {
	mockService := &MockFlightUseCase{}
	gin.SetMode(gin.TestMode)
	router := gin.New()
	eastern := time.FixedZone("EST", -5*60*60)
	NewFlightHandler(mockService, flightjson.NewCodec(eastern)).Register(router.Group("/flights"))

	want := time.Date(2023, 6, 16, 4, 30, 0, 0, time.UTC)
	mockService.On("Add", mock.Anything, mock.MatchedBy(func(f domain.Flight) bool {
		return f.DepartureTime.Equal(want)
	})).Return(nil).Once()

	w := serve(router, http.MethodPost, "/flights/", `{"FlightNumber":"FL1","DepartureTime":"2023-06-15T23:30:00"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_remove(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newTestRouter(mockService)

	mockService.On("Remove", mock.Anything, "NOPE").Return(nil).Once()
	mockService.On("Remove", mock.Anything, "FL1").Return(errors.New("disk full")).Once()

	w := serve(router, http.MethodDelete, "/flights/NOPE", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = serve(router, http.MethodDelete, "/flights/FL1", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_queries(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newTestRouter(mockService)

	mockService.On("ByAirline", mock.Anything, "WizAir").Return([]domain.Flight{sampleFlight("A")}).Once()
	mockService.On("Delayed", mock.Anything).Return([]domain.Flight{sampleFlight("B"), sampleFlight("C")}).Once()
	mockService.On("ByDepartureDate", mock.Anything, "2023-06-15").Return([]domain.Flight{}).Once()

	w := serve(router, http.MethodGet, "/flights/airline/WizAir", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Flights, 1)

	w = serve(router, http.MethodGet, "/flights/delayed", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Flights, 2)

	w = serve(router, http.MethodGet, "/flights/date/2023-06-15", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"flights":[]}`, w.Body.String())

	mockService.AssertExpectations(t)
}

func TestFlightHandler_rangeInvalidDateIsWarning(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newTestRouter(mockService)

	invalid := fmt.Errorf("by_time_range_and_destination: %w: %q", datetime.ErrInvalidDateFormat, "not-a-date")
	mockService.On("ByTimeRangeAndDestination", mock.Anything, "not-a-date", "2023-06-15T13:00:00", "NY").
		Return([]domain.Flight{}, invalid).Once()

	w := serve(router, http.MethodGet, "/flights/range?start=not-a-date&end=2023-06-15T13:00:00&destination=NY", "")
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	assert.Empty(t, resp.Flights)
	assert.Contains(t, resp.Warning, "invalid date format")

	mockService.AssertExpectations(t)
}

func TestFlightHandler_arrived(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newTestRouter(mockService)

	mockService.On("ArrivedInWindow", mock.Anything, "2023-06-15T14:00:00", 2.0).Return([]domain.Flight{sampleFlight("C")}, nil).Once()
	mockService.On("ArrivedInWindow", mock.Anything, "2023-06-15T14:00:00", 1.0).Return([]domain.Flight{}, nil).Once()

	w := serve(router, http.MethodGet, "/flights/arrived?end=2023-06-15T14:00:00&hours=2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode(t, w).Flights, 1)

	w = serve(router, http.MethodGet, "/flights/arrived?end=2023-06-15T14:00:00", "")
	assert.Equal(t, http.StatusOK, w.Code)

	for _, hours := range []string{"two", "NaN", "Inf", "-Inf", "1e300"} {
		w = serve(router, http.MethodGet, "/flights/arrived?end=2023-06-15T14:00:00&hours="+hours, "")
		assert.Equal(t, http.StatusBadRequest, w.Code, hours)
	}

	mockService.AssertExpectations(t)
}

func TestFlightHandler_loadSave(t *testing.T) {
	mockService := &MockFlightUseCase{}
	router := newTestRouter(mockService)

	mockService.On("Load", mock.Anything).Return(3, nil).Once()
	mockService.On("Save", mock.Anything).Return(0, errors.New("read-only filesystem")).Once()

	w := serve(router, http.MethodPost, "/flights/load", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":3}`, w.Body.String())

	w = serve(router, http.MethodPost, "/flights/save", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	mockService.AssertExpectations(t)
}

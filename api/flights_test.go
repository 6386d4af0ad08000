package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/airreservation/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockFlightUseCase is a mock implementation of flights.FlightUseCase
type MockFlightUseCase struct {
	mock.Mock
}

func (m *MockFlightUseCase) Add(flight domain.Flight) error {
	args := m.Called(flight)
	return args.Error(0)
}

func (m *MockFlightUseCase) FindByNumber(number string) (*domain.Flight, error) {
	args := m.Called(number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightUseCase) Search(origin, destination string) []domain.Flight {
	args := m.Called(origin, destination)
	return args.Get(0).([]domain.Flight)
}

func (m *MockFlightUseCase) Update(flight domain.Flight) (bool, error) {
	args := m.Called(flight)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightUseCase) Modify(number string, change func(*domain.Flight)) (*domain.Flight, error) {
	args := m.Called(number, change)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	f := *args.Get(0).(*domain.Flight)
	change(&f)
	return &f, args.Error(1)
}

func (m *MockFlightUseCase) Delete(number string) bool {
	args := m.Called(number)
	return args.Bool(0)
}

func (m *MockFlightUseCase) ListAll() []domain.Flight {
	args := m.Called()
	return args.Get(0).([]domain.Flight)
}

var departure = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func sampleFlight() domain.Flight {
	return domain.NewFlight("AA123", "New York", "Los Angeles", departure, departure.Add(3*time.Hour), 150, 29999)
}

func newContext(method, target, body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	if body == "" {
		c.Request = httptest.NewRequest(method, target, nil)
	} else {
		c.Request = httptest.NewRequest(method, target, strings.NewReader(body))
		c.Request.Header.Set("Content-Type", "application/json")
	}
	return c, w
}

func TestFlightHandler_list(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)
	c, w := newContext("GET", "/flights", "")

	mockService.On("ListAll").Return([]domain.Flight{sampleFlight()})

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got []domain.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "AA123", got[0].FlightNumber)

	mockService.AssertExpectations(t)
}

func TestFlightHandler_search(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)
	c, w := newContext("GET", "/flights?origin=new%20york&destination=los%20angeles", "")

	mockService.On("Search", "new york", "los angeles").Return([]domain.Flight{})

	handler.list(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	mockService.AssertExpectations(t)
}

func TestFlightHandler_searchNeedsBothEnds(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)
	c, w := newContext("GET", "/flights?origin=Chicago", "")

	handler.list(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestFlightHandler_get(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)
	c, w := newContext("GET", "/flights/AA123", "")
	c.Params = gin.Params{{Key: "number", Value: "AA123"}}

	flight := sampleFlight()
	mockService.On("FindByNumber", "AA123").Return(&flight, nil)

	handler.get(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_getNotFound(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)
	c, w := newContext("GET", "/flights/ZZ999", "")
	c.Params = gin.Params{{Key: "number", Value: "ZZ999"}}

	mockService.On("FindByNumber", "ZZ999").Return(nil, fmt.Errorf("%w: ZZ999", domain.ErrFlightNotFound))

	handler.get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "flight not found")
}

func TestFlightHandler_create(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)
	body := `{"flight_number":"AA123","origin":"New York","destination":"Los Angeles",
		"departure_time":"2026-03-02T08:00:00Z","arrival_time":"2026-03-02T11:00:00Z",
		"total_seats":150,"price_cents":29999}`
	c, w := newContext("POST", "/flights", body)

	mockService.On("Add", sampleFlight()).Return(nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var got domain.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 150, got.AvailableSeats)
	mockService.AssertExpectations(t)
}

func TestFlightHandler_createRejects(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "missing number", body: `{"origin":"A","destination":"B","total_seats":1}`},
		{name: "zero seats", body: `{"flight_number":"X1","origin":"A","destination":"B","total_seats":0}`},
		{name: "not json", body: `{`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &MockFlightUseCase{}
			handler := NewFlightHandler(mockService)
			c, w := newContext("POST", "/flights", tt.body)

			handler.create(c)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			mockService.AssertNotCalled(t, "Add", mock.Anything)
		})
	}
}

func TestFlightHandler_createDuplicate(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)
	c, w := newContext("POST", "/flights", `{"flight_number":"AA123","origin":"A","destination":"B","total_seats":10}`)

	mockService.On("Add", mock.Anything).Return(fmt.Errorf("%w: AA123", domain.ErrDuplicateFlight))

	handler.create(c)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestFlightHandler_update(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)
	c, w := newContext("PUT", "/flights/AA123", `{"price_cents":35000,"destination":"San Diego"}`)
	c.Params = gin.Params{{Key: "number", Value: "AA123"}}

	current := sampleFlight()
	current.AvailableSeats = 120
	mockService.On("Modify", "AA123", mock.Anything).Return(&current, nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var got domain.Flight
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, int64(35000), got.PriceCents)
	assert.Equal(t, "San Diego", got.Destination)
	assert.Equal(t, "New York", got.Origin)
	assert.Equal(t, 120, got.AvailableSeats)
}

func TestFlightHandler_delete(t *testing.T) {
	mockService := &MockFlightUseCase{}
	handler := NewFlightHandler(mockService)

	mockService.On("Delete", "AA123").Return(true)
	mockService.On("Delete", "ZZ999").Return(false)

	c, _ := newContext("DELETE", "/flights/AA123", "")
	c.Params = gin.Params{{Key: "number", Value: "AA123"}}
	handler.delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())

	c, w := newContext("DELETE", "/flights/ZZ999", "")
	c.Params = gin.Params{{Key: "number", Value: "ZZ999"}}
	handler.delete(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

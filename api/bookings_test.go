package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockBookingUseCase struct {
	mock.Mock
}

func (m *MockBookingUseCase) Request(ctx context.Context, rideID, userID string, seats int) (*domain.Passenger, error) {
	args := m.Called(ctx, rideID, userID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockBookingUseCase) Decide(ctx context.Context, rideID, driverID, passengerID string, accept bool) (*domain.Passenger, error) {
	args := m.Called(ctx, rideID, driverID, passengerID, accept)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockBookingUseCase) Cancel(ctx context.Context, rideID, userID string) error {
	args := m.Called(ctx, rideID, userID)
	return args.Error(0)
}

func (m *MockBookingUseCase) Complete(ctx context.Context, rideID, driverID string) (*domain.Ride, error) {
	args := m.Called(ctx, rideID, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockBookingUseCase) SubmitReview(ctx context.Context, rideID, userID string, rating int, comment string) (*domain.Review, error) {
	args := m.Called(ctx, rideID, userID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

// asUser wires the identity the auth middleware would normally set.
func asUser(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ctxUserID, userID)
		c.Set(ctxUserRole, role)
		c.Next()
	}
}

func bookingRouter(svc *MockBookingUseCase, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/rides", asUser(userID, domain.RoleUser))
	NewBookingHandler(svc).Register(group)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestBookingHandler_Book(t *testing.T) {
	svc := new(MockBookingUseCase)
	svc.On("Request", mock.Anything, "ride-1", "user-1", 2).
		Return(&domain.Passenger{ID: "p-1", BookedSeats: 2, Status: domain.BookingStatusPending}, nil)

	router := bookingRouter(svc, "user-1")
	rec := doJSON(t, router, http.MethodPost, "/api/rides/ride-1/book", gin.H{"seats": 2})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]any
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	booking := body["booking"].(map[string]any)
	assert.Equal(t, "p-1", booking["id"])
	assert.Equal(t, "pending", booking["status"])
	svc.AssertExpectations(t)
}

func TestBookingHandler_Book_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"capacity", domain.CapacityError("only 1 seats available"), http.StatusConflict, "CAPACITY"},
		{"duplicate", domain.ConflictError("booking request already exists"), http.StatusConflict, "CONFLICT"},
		{"own ride", domain.ValidationError("you cannot book your own ride"), http.StatusBadRequest, "VALIDATION"},
		{"inactive", domain.StateError("ride is not active"), http.StatusUnprocessableEntity, "STATE"},
		{"missing", domain.NotFoundError("ride not found"), http.StatusNotFound, "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockBookingUseCase)
			svc.On("Request", mock.Anything, "ride-1", "user-1", 1).Return(nil, tt.err)

			router := bookingRouter(svc, "user-1")
			rec := doJSON(t, router, http.MethodPost, "/api/rides/ride-1/book", gin.H{"seats": 1})

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]any
			assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body["code"])
		})
	}
}

func TestBookingHandler_Accept(t *testing.T) {
	svc := new(MockBookingUseCase)
	svc.On("Decide", mock.Anything, "ride-1", "driver-1", "p-1", true).
		Return(&domain.Passenger{ID: "p-1", Status: domain.BookingStatusAccepted}, nil)

	router := bookingRouter(svc, "driver-1")
	rec := doJSON(t, router, http.MethodPost, "/api/rides/ride-1/accept", gin.H{"passengerId": "p-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking accepted")
}

func TestBookingHandler_Reject(t *testing.T) {
	svc := new(MockBookingUseCase)
	svc.On("Decide", mock.Anything, "ride-1", "driver-1", "p-1", false).
		Return(&domain.Passenger{ID: "p-1", Status: domain.BookingStatusRejected}, nil)

	router := bookingRouter(svc, "driver-1")
	rec := doJSON(t, router, http.MethodPost, "/api/rides/ride-1/reject", gin.H{"passengerId": "p-1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "booking rejected")
}

func TestBookingHandler_Accept_NotDriver(t *testing.T) {
	svc := new(MockBookingUseCase)
	svc.On("Decide", mock.Anything, "ride-1", "user-2", "p-1", true).
		Return(nil, domain.AuthorizationError("only the driver can decide booking requests"))

	router := bookingRouter(svc, "user-2")
	rec := doJSON(t, router, http.MethodPost, "/api/rides/ride-1/accept", gin.H{"passengerId": "p-1"})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestBookingHandler_Cancel(t *testing.T) {
	svc := new(MockBookingUseCase)
	svc.On("Cancel", mock.Anything, "ride-1", "user-1").Return(nil)

	router := bookingRouter(svc, "user-1")
	rec := doJSON(t, router, http.MethodPost, "/api/rides/ride-1/cancel", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_Complete(t *testing.T) {
	svc := new(MockBookingUseCase)
	svc.On("Complete", mock.Anything, "ride-1", "driver-1").
		Return(&domain.Ride{ID: "ride-1", Status: domain.RideStatusCompleted}, nil)

	router := bookingRouter(svc, "driver-1")
	rec := doJSON(t, router, http.MethodPost, "/api/rides/ride-1/complete", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "completed")
}

func TestBookingHandler_Review(t *testing.T) {
	svc := new(MockBookingUseCase)
	svc.On("SubmitReview", mock.Anything, "ride-1", "user-1", 5, "great trip").
		Return(&domain.Review{ID: "r-1", Rating: 5, Comment: "great trip"}, nil)

	router := bookingRouter(svc, "user-1")
	rec := doJSON(t, router, http.MethodPost, "/api/rides/ride-1/review", gin.H{"rating": 5, "comment": "great trip"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "review submitted")
}

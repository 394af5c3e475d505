package rides

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/geo"
	"github.com/Domenick1991/carpool/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRideRepository struct {
	mock.Mock
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockRideRepository) List(ctx context.Context) ([]domain.Ride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ListActive(ctx context.Context) ([]domain.Ride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ListByPassenger(ctx context.Context, userID string) ([]domain.Ride, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) Delete(ctx context.Context, rideID, driverID string, force bool) error {
	args := m.Called(ctx, rideID, driverID, force)
	return args.Error(0)
}

func (m *MockRideRepository) RequestBooking(ctx context.Context, rideID, userID string, seats int) (*domain.Passenger, error) {
	args := m.Called(ctx, rideID, userID, seats)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockRideRepository) DecideBooking(ctx context.Context, rideID, driverID, passengerID string, accept bool) (*domain.Passenger, error) {
	args := m.Called(ctx, rideID, driverID, passengerID, accept)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Passenger), args.Error(1)
}

func (m *MockRideRepository) CancelBooking(ctx context.Context, rideID, userID string) error {
	args := m.Called(ctx, rideID, userID)
	return args.Error(0)
}

func (m *MockRideRepository) Complete(ctx context.Context, rideID, driverID string) ([]domain.Passenger, error) {
	args := m.Called(ctx, rideID, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Passenger), args.Error(1)
}

func (m *MockRideRepository) AddReview(ctx context.Context, rideID, userID string, rating int, comment string) (*domain.Review, error) {
	args := m.Called(ctx, rideID, userID, rating, comment)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *MockRideRepository) RejectStaleRequests(ctx context.Context, deadline time.Time) ([]repository.StaleRequest, error) {
	args := m.Called(ctx, deadline)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.StaleRequest), args.Error(1)
}

// stubGeocoder resolves places from a fixed table so nearby matching runs
// against real distances without any network.
type stubGeocoder struct {
	coords map[string]geo.Coordinates
}

func (g *stubGeocoder) Locate(_ context.Context, place string) (*geo.Coordinates, error) {
	c, ok := g.coords[place]
	if !ok {
		return nil, fmt.Errorf("no result for %q", place)
	}
	return &c, nil
}

func futureDate() (time.Time, string) {
	d := time.Now().AddDate(0, 0, 7).Truncate(24 * time.Hour)
	return d, d.Format("2006-01-02")
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()
	_, dateStr := futureDate()

	repo := new(MockRideRepository)
	repo.On("Create", ctx, mock.AnythingOfType("*domain.Ride")).Return(nil)

	svc := NewService(repo, nil, nil, 50)

	ride, err := svc.Create(ctx, "driver-1", CreateRideInput{
		From:          " Bengaluru ",
		To:            "Mysuru",
		DepartureDate: dateStr,
		DepartureTime: "07:30",
		TotalSeats:    3,
		PricePerSeat:  450,
		VehicleModel:  "Swift",
		VehicleNumber: "ka 01 ab 1234",
	})
	assert.NoError(t, err)
	assert.Equal(t, "Bengaluru", ride.From)
	assert.Equal(t, "KA01AB1234", ride.VehicleNumber)
	repo.AssertExpectations(t)
}

func TestService_Create_Validation(t *testing.T) {
	_, dateStr := futureDate()

	valid := CreateRideInput{
		From:          "Bengaluru",
		To:            "Mysuru",
		DepartureDate: dateStr,
		TotalSeats:    3,
		PricePerSeat:  450,
	}

	tests := []struct {
		name   string
		mutate func(*CreateRideInput)
	}{
		{"empty from", func(in *CreateRideInput) { in.From = "  " }},
		{"empty to", func(in *CreateRideInput) { in.To = "" }},
		{"zero seats", func(in *CreateRideInput) { in.TotalSeats = 0 }},
		{"negative price", func(in *CreateRideInput) { in.PricePerSeat = -1 }},
		{"bad date format", func(in *CreateRideInput) { in.DepartureDate = "07/30/2026" }},
		{"past date", func(in *CreateRideInput) { in.DepartureDate = "2020-01-01" }},
	}

	repo := new(MockRideRepository)
	svc := NewService(repo, nil, nil, 50)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.mutate(&in)
			_, err := svc.Create(context.Background(), "driver-1", in)
			assert.True(t, domain.IsKind(err, domain.KindValidation))
		})
	}
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func searchFixtures(t *testing.T) ([]domain.Ride, *stubGeocoder) {
	t.Helper()
	date, _ := futureDate()

	rides := []domain.Ride{
		{ID: "exact", From: "Bengaluru", To: "Mysuru", DepartureDate: date, TotalSeats: 3, PricePerSeat: 450, Status: domain.RideStatusActive},
		{ID: "nearby", From: "Whitefield", To: "Srirangapatna", DepartureDate: date, TotalSeats: 2, PricePerSeat: 400, Status: domain.RideStatusActive},
		{ID: "far", From: "Chennai", To: "Madurai", DepartureDate: date, TotalSeats: 4, PricePerSeat: 600, Status: domain.RideStatusActive},
	}

	geocoder := &stubGeocoder{coords: map[string]geo.Coordinates{
		"Bengaluru":     {Lat: 12.9716, Lon: 77.5946},
		"Mysuru":        {Lat: 12.2958, Lon: 76.6394},
		"Whitefield":    {Lat: 12.9698, Lon: 77.7500},
		"Srirangapatna": {Lat: 12.4181, Lon: 76.6947},
		"Chennai":       {Lat: 13.0827, Lon: 80.2707},
		"Madurai":       {Lat: 9.9252, Lon: 78.1198},
	}}
	return rides, geocoder
}

func TestService_Search_TwoTiers(t *testing.T) {
	ctx := context.Background()
	rides, geocoder := searchFixtures(t)

	repo := new(MockRideRepository)
	repo.On("ListActive", ctx).Return(rides, nil)

	svc := NewService(repo, nil, geocoder, 50)

	result, err := svc.Search(ctx, SearchInput{From: "Bengaluru", To: "Mysuru"})
	assert.NoError(t, err)

	assert.Len(t, result.ExactMatches, 1)
	assert.Equal(t, "exact", result.ExactMatches[0].ID)

	assert.Len(t, result.NearbyMatches, 1)
	assert.Equal(t, "nearby", result.NearbyMatches[0].ID)
	assert.Greater(t, result.NearbyMatches[0].FromDistance, 0.0)
	assert.LessOrEqual(t, result.NearbyMatches[0].FromDistance, 50.0)
	assert.LessOrEqual(t, result.NearbyMatches[0].ToDistance, 50.0)
}

func TestService_Search_GeocoderFailure(t *testing.T) {
	ctx := context.Background()
	rides, _ := searchFixtures(t)

	repo := new(MockRideRepository)
	repo.On("ListActive", ctx).Return(rides, nil)

	// Empty table: every lookup fails, the nearby tier degrades to empty.
	svc := NewService(repo, nil, &stubGeocoder{coords: map[string]geo.Coordinates{}}, 50)

	result, err := svc.Search(ctx, SearchInput{From: "Bengaluru", To: "Mysuru"})
	assert.NoError(t, err)
	assert.Len(t, result.ExactMatches, 1)
	assert.Empty(t, result.NearbyMatches)
}

func TestService_Search_Filters(t *testing.T) {
	ctx := context.Background()
	date, dateStr := futureDate()

	rides := []domain.Ride{
		{
			ID: "full", From: "Bengaluru", To: "Mysuru", DepartureDate: date,
			TotalSeats: 2, PricePerSeat: 450, Status: domain.RideStatusActive,
			Passengers: []domain.Passenger{{UserID: "x", BookedSeats: 2, Status: domain.BookingStatusAccepted}},
		},
		{ID: "pricey", From: "Bengaluru", To: "Mysuru", DepartureDate: date, TotalSeats: 3, PricePerSeat: 900, Status: domain.RideStatusActive},
		{ID: "open", From: "Bengaluru", To: "Mysuru", DepartureDate: date, TotalSeats: 3, PricePerSeat: 450, Status: domain.RideStatusActive},
	}

	repo := new(MockRideRepository)
	repo.On("ListActive", ctx).Return(rides, nil)

	svc := NewService(repo, nil, &stubGeocoder{}, 50)

	result, err := svc.Search(ctx, SearchInput{From: "Bengaluru", To: "Mysuru", Date: dateStr, MinSeats: 2, MaxPrice: 500})
	assert.NoError(t, err)
	assert.Len(t, result.ExactMatches, 1)
	assert.Equal(t, "open", result.ExactMatches[0].ID)
}

func TestService_Search_BadDate(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRideRepository)
	repo.On("ListActive", ctx).Return([]domain.Ride{}, nil)

	svc := NewService(repo, nil, &stubGeocoder{}, 50)

	_, err := svc.Search(ctx, SearchInput{Date: "not-a-date"})
	assert.True(t, domain.IsKind(err, domain.KindValidation))
}

func TestService_Delete(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRideRepository)
	repo.On("Delete", ctx, "ride-1", "driver-1", false).Return(nil)

	svc := NewService(repo, nil, nil, 50)

	assert.NoError(t, svc.Delete(ctx, "ride-1", "driver-1", false))
	repo.AssertExpectations(t)
}

func TestService_Delete_WithAcceptedPassengers(t *testing.T) {
	ctx := context.Background()

	repo := new(MockRideRepository)
	repo.On("Delete", ctx, "ride-1", "driver-1", false).
		Return(domain.ConflictError("ride has accepted passengers"))

	svc := NewService(repo, nil, nil, 50)

	err := svc.Delete(ctx, "ride-1", "driver-1", false)
	assert.True(t, domain.IsKind(err, domain.KindConflict))
}

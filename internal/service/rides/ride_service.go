package rides

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/Domenick1991/carpool/internal/domain"
	"github.com/Domenick1991/carpool/internal/geo"
	"github.com/Domenick1991/carpool/internal/repository"
)

type RideUseCase interface {
	Create(ctx context.Context, driverID string, input CreateRideInput) (*domain.Ride, error)
	Get(ctx context.Context, id string) (*domain.Ride, error)
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
	ListAll(ctx context.Context) ([]domain.Ride, error)
	MyRides(ctx context.Context, driverID string) ([]domain.Ride, error)
	MyBookings(ctx context.Context, userID string) ([]domain.Ride, error)
	Delete(ctx context.Context, rideID, actorID string, admin bool) error
}

type Cache interface {
	GetActiveRides(ctx context.Context) ([]domain.Ride, error)
	SetActiveRides(ctx context.Context, rides []domain.Ride) error
	InvalidateActiveRides(ctx context.Context) error
	GetCoordinates(ctx context.Context, place string) (*geo.Coordinates, error)
	SetCoordinates(ctx context.Context, place string, coords geo.Coordinates) error
}

type Geocoder interface {
	Locate(ctx context.Context, place string) (*geo.Coordinates, error)
}

type Service struct {
	rides        repository.RideRepository
	cache        Cache
	geocoder     Geocoder
	nearbyRadius float64
}

func NewService(rides repository.RideRepository, cache Cache, geocoder Geocoder, nearbyRadiusKM float64) *Service {
	return &Service{rides: rides, cache: cache, geocoder: geocoder, nearbyRadius: nearbyRadiusKM}
}

type CreateRideInput struct {
	From          string
	To            string
	DepartureDate string
	DepartureTime string
	TotalSeats    int
	PricePerSeat  float64
	Description   string
	VehicleModel  string
	VehicleNumber string
	VehiclePhoto  string
}

type SearchInput struct {
	From     string
	To       string
	Date     string
	MinSeats int
	MinPrice float64
	MaxPrice float64
}

// NearbyRide is a search hit whose locations did not match exactly but whose
// geocoded endpoints fall within the nearby radius. Distances are kilometers
// from the searched endpoints.
type NearbyRide struct {
	domain.Ride
	FromDistance float64
	ToDistance   float64
}

type SearchResult struct {
	ExactMatches  []domain.Ride
	NearbyMatches []NearbyRide
}

const dateLayout = "2006-01-02"

func (s *Service) Create(ctx context.Context, driverID string, input CreateRideInput) (*domain.Ride, error) {
	if strings.TrimSpace(input.From) == "" || strings.TrimSpace(input.To) == "" {
		return nil, domain.ValidationError("from and to locations are required")
	}
	if input.TotalSeats <= 0 {
		return nil, domain.ValidationError("seats must be greater than zero")
	}
	if input.PricePerSeat < 0 {
		return nil, domain.ValidationError("price per seat cannot be negative")
	}
	date, err := time.Parse(dateLayout, input.DepartureDate)
	if err != nil {
		return nil, domain.ValidationError("departure date must be in YYYY-MM-DD format")
	}
	today := time.Now().Truncate(24 * time.Hour)
	if date.Before(today) {
		return nil, domain.ValidationError("departure date must not be in the past")
	}

	ride := &domain.Ride{
		DriverID:      driverID,
		From:          strings.TrimSpace(input.From),
		To:            strings.TrimSpace(input.To),
		DepartureDate: date,
		DepartureTime: input.DepartureTime,
		TotalSeats:    input.TotalSeats,
		PricePerSeat:  input.PricePerSeat,
		Description:   input.Description,
		VehicleModel:  input.VehicleModel,
		VehicleNumber: strings.ToUpper(strings.ReplaceAll(input.VehicleNumber, " ", "")),
		VehiclePhoto:  input.VehiclePhoto,
	}
	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return ride, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Ride, error) {
	return s.rides.GetByID(ctx, id)
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Ride, error) {
	return s.rides.List(ctx)
}

func (s *Service) MyRides(ctx context.Context, driverID string) ([]domain.Ride, error) {
	return s.rides.ListByDriver(ctx, driverID)
}

func (s *Service) MyBookings(ctx context.Context, userID string) ([]domain.Ride, error) {
	return s.rides.ListByPassenger(ctx, userID)
}

func (s *Service) Delete(ctx context.Context, rideID, actorID string, admin bool) error {
	if err := s.rides.Delete(ctx, rideID, actorID, admin); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// Search returns two result tiers: rides whose locations match the query
// exactly, and rides whose geocoded endpoints are within the nearby radius.
// Geocoding failures degrade to an empty nearby tier, never to an error.
func (s *Service) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	rides, err := s.activeRides(ctx)
	if err != nil {
		return nil, err
	}

	var filterDate *time.Time
	if input.Date != "" {
		d, err := time.Parse(dateLayout, input.Date)
		if err != nil {
			return nil, domain.ValidationError("date must be in YYYY-MM-DD format")
		}
		filterDate = &d
	}

	result := &SearchResult{
		ExactMatches:  make([]domain.Ride, 0),
		NearbyMatches: make([]NearbyRide, 0),
	}

	var candidates []domain.Ride
	for _, ride := range rides {
		if !s.matchesFilters(&ride, filterDate, input) {
			continue
		}
		if matchesExact(&ride, input.From, input.To) {
			result.ExactMatches = append(result.ExactMatches, ride)
		} else {
			candidates = append(candidates, ride)
		}
	}

	if input.From == "" && input.To == "" {
		return result, nil
	}

	searchFrom, searchTo, ok := s.locateEndpoints(ctx, input.From, input.To)
	if !ok {
		return result, nil
	}

	for _, ride := range candidates {
		nearby, ok := s.nearbyMatch(ctx, ride, searchFrom, searchTo)
		if ok {
			result.NearbyMatches = append(result.NearbyMatches, nearby)
		}
	}
	return result, nil
}

func (s *Service) matchesFilters(ride *domain.Ride, filterDate *time.Time, input SearchInput) bool {
	if filterDate != nil {
		y1, m1, d1 := ride.DepartureDate.Date()
		y2, m2, d2 := filterDate.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			return false
		}
	} else if ride.DepartureDate.Before(time.Now().Truncate(24 * time.Hour)) {
		return false
	}
	if input.MinSeats > 0 && ride.AvailableSeats() < input.MinSeats {
		return false
	}
	if input.MinPrice > 0 && ride.PricePerSeat < input.MinPrice {
		return false
	}
	if input.MaxPrice > 0 && ride.PricePerSeat > input.MaxPrice {
		return false
	}
	return true
}

func matchesExact(ride *domain.Ride, from, to string) bool {
	if from != "" && !strings.EqualFold(strings.TrimSpace(from), ride.From) {
		return false
	}
	if to != "" && !strings.EqualFold(strings.TrimSpace(to), ride.To) {
		return false
	}
	return true
}

func (s *Service) locateEndpoints(ctx context.Context, from, to string) (fromCoords, toCoords *geo.Coordinates, ok bool) {
	var err error
	if from != "" {
		if fromCoords, err = s.locate(ctx, from); err != nil {
			log.Printf("WARNING: geocoding %q failed, skipping nearby matches: %v", from, err)
			return nil, nil, false
		}
	}
	if to != "" {
		if toCoords, err = s.locate(ctx, to); err != nil {
			log.Printf("WARNING: geocoding %q failed, skipping nearby matches: %v", to, err)
			return nil, nil, false
		}
	}
	return fromCoords, toCoords, true
}

func (s *Service) nearbyMatch(ctx context.Context, ride domain.Ride, searchFrom, searchTo *geo.Coordinates) (NearbyRide, bool) {
	nearby := NearbyRide{Ride: ride}
	if searchFrom != nil {
		coords, err := s.locate(ctx, ride.From)
		if err != nil {
			return nearby, false
		}
		nearby.FromDistance = geo.Distance(*searchFrom, *coords)
		if nearby.FromDistance > s.nearbyRadius {
			return nearby, false
		}
	}
	if searchTo != nil {
		coords, err := s.locate(ctx, ride.To)
		if err != nil {
			return nearby, false
		}
		nearby.ToDistance = geo.Distance(*searchTo, *coords)
		if nearby.ToDistance > s.nearbyRadius {
			return nearby, false
		}
	}
	return nearby, true
}

func (s *Service) activeRides(ctx context.Context) ([]domain.Ride, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetActiveRides(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rides, err := s.rides.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetActiveRides(ctx, rides); err != nil {
			log.Printf("WARNING: failed to cache active rides: %v", err)
		}
	}
	return rides, nil
}

func (s *Service) locate(ctx context.Context, place string) (*geo.Coordinates, error) {
	if s.cache != nil {
		if coords, err := s.cache.GetCoordinates(ctx, place); err == nil && coords != nil {
			return coords, nil
		}
	}

	coords, err := s.geocoder.Locate(ctx, place)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetCoordinates(ctx, place, *coords); err != nil {
			log.Printf("WARNING: failed to cache coordinates for %q: %v", place, err)
		}
	}
	return coords, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateActiveRides(ctx); err != nil {
		log.Printf("WARNING: failed to invalidate ride cache: %v", err)
	}
}

var _ RideUseCase = (*Service)(nil)

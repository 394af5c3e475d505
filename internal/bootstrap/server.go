package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/carpool/api"
	"github.com/Domenick1991/carpool/config"
	"github.com/Domenick1991/carpool/internal/auth"
	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/Domenick1991/carpool/internal/service/notifications"
	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/Domenick1991/carpool/internal/service/users"
	"github.com/gin-gonic/gin"
)

type Services struct {
	Users         users.UserUseCase
	Rides         rides.RideUseCase
	Bookings      booking.BookingUseCase
	Notifications notifications.NotificationUseCase
	Tokens        *auth.TokenService
}

// NewRouter assembles the REST surface under /api.
func NewRouter(svc Services) *gin.Engine {
	router := gin.Default()

	root := router.Group("/api")
	api.NewAuthHandler(svc.Users).Register(root.Group("/auth"))

	authed := root.Group("/", api.Authenticate(svc.Tokens))
	api.NewUserHandler(svc.Users).Register(authed.Group("/users"))

	ridesGroup := authed.Group("/rides")
	api.NewRideHandler(svc.Rides).Register(ridesGroup)
	api.NewBookingHandler(svc.Bookings).Register(ridesGroup)

	api.NewNotificationHandler(svc.Notifications).Register(authed.Group("/notifications"))

	return router
}

// Run serves HTTP until the context is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, svc Services) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: NewRouter(svc),
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

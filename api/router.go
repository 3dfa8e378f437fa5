package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Domenick1991/carpool/internal/auth"
	"github.com/Domenick1991/carpool/internal/logging"
	"github.com/Domenick1991/carpool/internal/service/booking"
	"github.com/Domenick1991/carpool/internal/service/cars"
	"github.com/Domenick1991/carpool/internal/service/notify"
	"github.com/Domenick1991/carpool/internal/service/rides"
	"github.com/Domenick1991/carpool/internal/service/search"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// WSHandler serves a websocket session for one user.
type WSHandler interface {
	ServeWS(w http.ResponseWriter, r *http.Request, userID string)
}

type Deps struct {
	Rides         rides.RideUseCase
	Search        search.SearchUseCase
	Bookings      booking.BookingUseCase
	Cars          cars.CarUseCase
	Notifications notify.NotificationUseCase
	Verifier      auth.TokenVerifier
	// Realtime is set when notifications are delivered in this process.
	Realtime       WSHandler
	SwaggerDir     string
	AllowedOrigins []string
	Logger         *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	logger := logging.OrDefault(d.Logger)

	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), Metrics(), Logger(logger))
	router.Use(cors.New(corsConfig(d.AllowedOrigins)))

	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	if d.SwaggerDir != "" {
		router.Static("/swagger", d.SwaggerDir)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/carpool.swagger.json"))))
	}
	if d.Realtime != nil {
		router.GET("/ws/:user_id", func(c *gin.Context) {
			userID := c.Param("user_id")
			// Browsers cannot set headers on a websocket handshake.
			caller, err := d.Verifier.Verify(c.Query("token"))
			if err != nil || caller != userID {
				c.AbortWithStatusJSON(http.StatusUnauthorized, errorResponse{Error: errorBody{Kind: "unauthorized", Message: "invalid token"}})
				return
			}
			d.Realtime.ServeWS(c.Writer, c.Request, userID)
		})
	}

	v1 := router.Group("/api/v1", Auth(d.Verifier))
	NewRideHandler(d.Rides).Register(v1)
	NewSearchHandler(d.Search).Register(v1)
	NewBookingHandler(d.Bookings).Register(v1)
	NewNotificationHandler(d.Notifications).Register(v1)
	if d.Cars != nil {
		NewCarHandler(d.Cars).Register(v1)
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "Accept", "Origin", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

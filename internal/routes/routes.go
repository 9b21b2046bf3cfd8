package routes

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"campus_shuttle/internal/auth"
	"campus_shuttle/internal/controllers"
	"campus_shuttle/internal/middleware"
	"campus_shuttle/internal/realtime"
	"campus_shuttle/internal/services"
	"campus_shuttle/internal/store"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Store       store.Store
	Tokens      *auth.TokenManager
	Hub         *realtime.Hub // nil disables the live feed
	CORSOrigins []string
	AccessLog   io.Writer // nil disables the access log

	// Now overrides the clock of the time-dependent services; nil means time.Now.
	Now func() time.Time
}

type handlers struct {
	auth     *controllers.AuthController
	bookings *controllers.BookingController
	wallets  *controllers.WalletController
	routes   *controllers.RouteController
	stops    *controllers.StopController
	shuttles *controllers.ShuttleController
	admin    *controllers.AdminController
	ws       *controllers.WebSocketController

	requireAuth  gin.HandlerFunc
	requireAdmin gin.HandlerFunc
}

func SetupRouter(d Deps) *gin.Engine {
	controllers.RegisterValidators()

	r := gin.New()
	r.Use(middleware.RequestID())
	if d.AccessLog != nil {
		r.Use(middleware.AccessLog(d.AccessLog))
	}
	r.Use(gin.Recovery(), middleware.CORS(d.CORSOrigins))

	var pub services.OccupancyPublisher
	if d.Hub != nil {
		pub = d.Hub
	}

	bookingSvc := services.NewBookingService(d.Store, pub)
	routeSvc := services.NewRouteService(d.Store)
	walletSvc := services.NewWalletService(d.Store)
	authSvc := services.NewAuthService(d.Store, d.Tokens)
	userSvc := services.NewUserService(d.Store)
	if d.Now != nil {
		bookingSvc.Now = d.Now
		routeSvc.Now = d.Now
		walletSvc.Now = d.Now
		authSvc.Now = d.Now
	}

	h := handlers{
		auth:         controllers.NewAuthController(authSvc),
		bookings:     controllers.NewBookingController(bookingSvc),
		wallets:      controllers.NewWalletController(walletSvc),
		routes:       controllers.NewRouteController(routeSvc),
		stops:        controllers.NewStopController(services.NewStopService(d.Store)),
		shuttles:     controllers.NewShuttleController(services.NewShuttleService(d.Store, pub)),
		admin:        controllers.NewAdminController(userSvc),
		ws:           controllers.NewWebSocketController(d.Hub, d.Tokens),
		requireAuth:  middleware.RequireAuth(d.Tokens),
		requireAdmin: middleware.RequireAdmin(d.Tokens, userSvc),
	}

	api := r.Group("/api")
	api.GET("/health", controllers.Health(d.Store))

	AuthRoutes(api, h)
	WalletRoutes(api, h)
	BookingRoutes(api, h)
	RouteRoutes(api, h)
	StopRoutes(api, h)
	ShuttleRoutes(api, h)
	AdminRoutes(api, h)
	if d.Hub != nil {
		WebSocketRoutes(r, h)
	}

	return r
}

package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	_ "stagecrew/docs"
	"stagecrew/internal/delivery/http/controllers"
	"stagecrew/internal/delivery/http/middleware"
	"stagecrew/internal/domain"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Auth       *controllers.AuthController
	Template   *controllers.TemplateController
	Event      *controllers.EventController
	Schedule   *controllers.ScheduleController
	Assignment *controllers.AssignmentController
	Waitlist   *controllers.WaitlistController
	Token      *controllers.TokenController
	Conflict   *controllers.ConflictController
	Catalog    *controllers.CatalogController
}

// NewRouter initializes the HTTP router with all application routes.
// Token routes are public: the opaque token is the credential. Everything
// else requires a staff bearer token; mutating admin routes additionally
// require the organizer role.
func NewRouter(c Controllers, verifier domain.TokenVerifier, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	auth := middleware.RequireAuth(verifier, logger)
	organizer := func(h http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRole(domain.RoleOrganizer)(h))
	}

	// Auth
	mux.HandleFunc("POST /auth/login", c.Auth.Login)

	// Templates
	mux.HandleFunc("POST /templates", organizer(c.Template.Create))
	mux.HandleFunc("GET /templates", auth(c.Template.List))
	mux.HandleFunc("GET /templates/{templateID}", auth(c.Template.Get))
	mux.HandleFunc("DELETE /templates/{templateID}", organizer(c.Template.Archive))

	// Events and schedules
	mux.HandleFunc("POST /events", organizer(c.Event.Create))
	mux.HandleFunc("GET /events", auth(c.Event.List))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.Get))
	mux.HandleFunc("POST /events/{eventID}/schedule", organizer(c.Schedule.Expand))
	mux.HandleFunc("GET /events/{eventID}/schedule", auth(c.Schedule.Get))
	mux.HandleFunc("DELETE /events/{eventID}/schedule", organizer(c.Schedule.Reset))

	// Assignments and waitlists
	mux.HandleFunc("POST /slots/{slotID}/assignments", auth(c.Assignment.Create))
	mux.HandleFunc("POST /assignments/{assignmentID}/cancel", auth(c.Assignment.Cancel))
	mux.HandleFunc("POST /assignments/{assignmentID}/attendance", organizer(c.Assignment.MarkAttendance))
	mux.HandleFunc("POST /slots/{slotID}/waitlist", auth(c.Waitlist.Enqueue))
	mux.HandleFunc("POST /waitlist/{entryID}/respond", auth(c.Waitlist.Respond))

	// Token-addressed actions (public, token is the credential)
	mux.HandleFunc("GET /t/{kind}/{token}", c.Token.Resolve)
	mux.HandleFunc("POST /t/cancel/{token}", c.Token.Cancel)
	mux.HandleFunc("POST /t/confirm/{token}", c.Token.Confirm)
	mux.HandleFunc("POST /t/decline/{token}", c.Token.Decline)
	mux.HandleFunc("POST /t/feedback/{token}", c.Token.Feedback)

	// Advisory checks
	mux.HandleFunc("GET /people/{personID}/conflicts", auth(c.Conflict.PersonConflicts))
	mux.HandleFunc("GET /rooms/{roomID}/conflicts", auth(c.Conflict.RoomConflict))
	mux.HandleFunc("GET /resources/{resourceID}/availability", auth(c.Conflict.ResourceAvailability))

	// Rooms, resources, and reservations
	mux.HandleFunc("POST /rooms", organizer(c.Catalog.CreateRoom))
	mux.HandleFunc("GET /rooms", auth(c.Catalog.ListRooms))
	mux.HandleFunc("POST /resources", organizer(c.Catalog.CreateResource))
	mux.HandleFunc("GET /resources", auth(c.Catalog.ListResources))
	mux.HandleFunc("POST /events/{eventID}/room-reservations", organizer(c.Catalog.ReserveRoom))
	mux.HandleFunc("POST /events/{eventID}/resource-reservations", organizer(c.Catalog.ReserveResource))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

package http

import (
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// StayService is everything the public stay and booking routes need.
type StayService interface {
	StayQuoter
	AvailabilityChecker
	PropertyAvailabilityChecker
	BookingCommitter
	BookingReader
	BookingTransitioner
}

type AdminService interface {
	AdminPropertyService
	AdminUnitService
}

type Deps struct {
	Search Searcher
	Stays  StayService
	Admin  AdminService
	Log    logrus.FieldLogger

	// Storage is nil for the in-memory store.
	Storage StorageStateReporter

	// CORSOrigins is the browser origin allow-list; "*" allows any origin.
	CORSOrigins []string
}

// NewRouter wires every route behind CORS and request logging.
func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := mux.NewRouter()
	r.NotFoundHandler = NotFoundHandler()
	r.MethodNotAllowedHandler = MethodNotAllowedHandler()

	r.Handle("/health", HealthHandler(d.Storage)).Methods(http.MethodGet)

	// Routes sit on the root router so a method mismatch reaches MethodNotAllowedHandler.
	r.Handle("/api/search", HandleSearch(d.Search, log)).Methods(http.MethodPost)
	r.Handle("/api/units/{id}/quote", HandleQuote(d.Stays, log)).Methods(http.MethodPost)
	r.Handle("/api/units/{id}/availability", HandleAvailability(d.Stays, log)).Methods(http.MethodPost)
	r.Handle("/api/properties/{id}/availability", HandlePropertyAvailability(d.Stays, log)).Methods(http.MethodPost)
	r.Handle("/api/bookings", HandleCreateBooking(d.Stays, log)).Methods(http.MethodPost)
	r.Handle("/api/bookings/{id}", HandleGetBooking(d.Stays, log)).Methods(http.MethodGet)
	r.Handle("/api/bookings/{id}/{action:cancel|confirm|complete}", HandleBookingTransition(d.Stays, log)).Methods(http.MethodPost)

	r.Handle("/admin/properties", HandleListProperties(d.Admin, log)).Methods(http.MethodGet)
	r.Handle("/admin/properties", HandleCreateProperty(d.Admin, log)).Methods(http.MethodPost)
	r.Handle("/admin/properties/{id}/units", HandleListUnits(d.Admin, log)).Methods(http.MethodGet)
	r.Handle("/admin/properties/{id}/units", HandleCreateUnit(d.Admin, log)).Methods(http.MethodPost)

	cors := handlers.CORS(
		handlers.AllowedOrigins(d.CORSOrigins),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", idempotencyHeader}),
	)
	return RequestLogger(cors(r), log)
}

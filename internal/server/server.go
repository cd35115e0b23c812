package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/emowed/emowed-server/internal/config"
	"github.com/emowed/emowed-server/internal/dashboard"
	"github.com/emowed/emowed-server/internal/database"
	"github.com/emowed/emowed-server/internal/invite"
	"github.com/emowed/emowed-server/internal/notify"
	"github.com/emowed/emowed-server/internal/registry"
	"github.com/emowed/emowed-server/internal/rsvp"
	"github.com/emowed/emowed-server/internal/server/handlers"
	"github.com/emowed/emowed-server/internal/snapshot"
	"github.com/emowed/emowed-server/internal/wedding"
)

const sessionName = "emowed-session"

type Server struct {
	config       *config.Config
	db           *database.DB
	log          zerolog.Logger
	sessionStore *sessions.CookieStore
	router       *mux.Router

	registry  *registry.Service
	rsvp      *rsvp.Service
	snapshots *snapshot.Service
	invites   *invite.Service
	weddings  *wedding.Service
	dashboard *dashboard.Service
}

func New(cfg *config.Config, db *database.DB, log zerolog.Logger) *Server {
	notifier := notify.New(db, log)

	invites := invite.New(db, notifier, log)
	invites.PartnerTTL = cfg.PartnerInviteTTL
	invites.GuestTTL = cfg.GuestInviteTTL
	invites.VendorTTL = cfg.VendorInviteTTL

	s := &Server{
		config:       cfg,
		db:           db,
		log:          log.With().Str("component", "server").Logger(),
		sessionStore: sessions.NewCookieStore([]byte(cfg.SessionSecret)),
		router:       mux.NewRouter(),
		registry:     registry.New(db, log),
		rsvp:         rsvp.New(db, log),
		snapshots:    snapshot.New(db, log),
		invites:      invites,
		weddings:     wedding.New(db, notifier, log),
		dashboard:    dashboard.New(db, log),
	}

	s.setupRoutes()
	return s
}

// GetDB implements handlers.Server interface
func (s *Server) GetDB() *database.DB { return s.db }

// GetConfig implements handlers.Server interface
func (s *Server) GetConfig() *config.Config { return s.config }

func (s *Server) Registry() *registry.Service   { return s.registry }
func (s *Server) RSVP() *rsvp.Service           { return s.rsvp }
func (s *Server) Snapshots() *snapshot.Service  { return s.snapshots }
func (s *Server) Invites() *invite.Service      { return s.invites }
func (s *Server) Weddings() *wedding.Service    { return s.weddings }
func (s *Server) Dashboard() *dashboard.Service { return s.dashboard }

// CurrentUser implements handlers.Server interface
func (s *Server) CurrentUser(r *http.Request) string {
	session, _ := s.sessionStore.Get(r, sessionName)
	userID, _ := session.Values["user_id"].(string)
	return userID
}

// SetCurrentUser implements handlers.SessionWriter interface
func (s *Server) SetCurrentUser(w http.ResponseWriter, r *http.Request, userID string) error {
	session, _ := s.sessionStore.Get(r, sessionName)
	session.Values["user_id"] = userID
	return session.Save(r, w)
}

// ClearCurrentUser implements handlers.SessionWriter interface
func (s *Server) ClearCurrentUser(w http.ResponseWriter, r *http.Request) error {
	session, _ := s.sessionStore.Get(r, sessionName)
	delete(session.Values, "user_id")
	session.Options.MaxAge = -1
	return session.Save(r, w)
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Accounts and sessions
	api.HandleFunc("/users", handlers.HandleRegister(s, s)).Methods(http.MethodPost)
	api.HandleFunc("/users/me", handlers.HandleCurrentUser(s)).Methods(http.MethodGet)
	api.HandleFunc("/login", handlers.HandleLogin(s, s)).Methods(http.MethodPost)
	api.HandleFunc("/logout", handlers.HandleLogout(s)).Methods(http.MethodPost)

	// Partner invitations
	api.HandleFunc("/invitations/partner", handlers.HandleCreatePartnerInvitation(s)).Methods(http.MethodPost)
	api.HandleFunc("/invitations/partner/{code}", handlers.HandleGetPartnerInvitation(s)).Methods(http.MethodGet)
	api.HandleFunc("/invitations/partner/{code}/accept", handlers.HandleAcceptPartnerInvitation(s)).Methods(http.MethodPost)
	api.HandleFunc("/invitations/partner/{code}/reject", handlers.HandleRejectPartnerInvitation(s)).Methods(http.MethodPost)

	// Guest invitations
	api.HandleFunc("/guest-invitations/{id}/accept", handlers.HandleRespondGuestInvitation(s, true)).Methods(http.MethodPost)
	api.HandleFunc("/guest-invitations/{id}/reject", handlers.HandleRespondGuestInvitation(s, false)).Methods(http.MethodPost)

	// Vendor invitations
	api.HandleFunc("/vendor-invitations/{id}/accept", handlers.HandleRespondVendorInvitation(s, true)).Methods(http.MethodPost)
	api.HandleFunc("/vendor-invitations/{id}/reject", handlers.HandleRespondVendorInvitation(s, false)).Methods(http.MethodPost)

	// Weddings
	api.HandleFunc("/weddings", handlers.HandleCreateWedding(s)).Methods(http.MethodPost)
	api.HandleFunc("/weddings/{id}/events", handlers.HandleCreateEvent(s)).Methods(http.MethodPost)
	api.HandleFunc("/weddings/{id}/events", handlers.HandleListEvents(s)).Methods(http.MethodGet)
	api.HandleFunc("/weddings/{id}/guests", handlers.HandleInviteGuest(s)).Methods(http.MethodPost)
	api.HandleFunc("/weddings/{id}/guests", handlers.HandleListGuests(s)).Methods(http.MethodGet)
	api.HandleFunc("/weddings/{id}/guests.csv", handlers.HandleDownloadGuestsCSV(s)).Methods(http.MethodGet)
	api.HandleFunc("/weddings/{id}/guest-invitations", handlers.HandleCreateGuestInvitation(s)).Methods(http.MethodPost)
	api.HandleFunc("/weddings/{id}/vendor-invitations", handlers.HandleCreateVendorInvitation(s)).Methods(http.MethodPost)

	// Guests
	api.HandleFunc("/guests/{id}", handlers.HandleUpdateGuest(s)).Methods(http.MethodPatch)
	api.HandleFunc("/guests/{id}", handlers.HandleRemoveGuest(s)).Methods(http.MethodDelete)

	// Events and RSVPs
	api.HandleFunc("/events/{id}", handlers.HandleUpdateEvent(s)).Methods(http.MethodPut)
	api.HandleFunc("/events/{id}", handlers.HandleDeleteEvent(s)).Methods(http.MethodDelete)
	api.HandleFunc("/events/{id}/rsvp", handlers.HandleSubmitRSVP(s)).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}/rsvp", handlers.HandleGetRSVP(s)).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}/snapshots", handlers.HandleComputeSnapshot(s)).Methods(http.MethodPost)
	api.HandleFunc("/events/{id}/snapshots/latest", handlers.HandleLatestSnapshot(s)).Methods(http.MethodGet)

	// Dashboard and notifications
	api.HandleFunc("/dashboard", handlers.HandleDashboard(s)).Methods(http.MethodGet)
	api.HandleFunc("/notifications", handlers.HandleListNotifications(s)).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id}/read", handlers.HandleMarkNotificationRead(s)).Methods(http.MethodPost)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.db.PingContext(r.Context()); err != nil {
		s.log.Error().Err(err).Msg("health check failed")
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) Start(addr string) error {
	c := cors.New(cors.Options{
		AllowedOrigins:   s.config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
	})

	s.log.Info().Str("addr", addr).Msg("listening")
	return http.ListenAndServe(addr, c.Handler(s.router))
}

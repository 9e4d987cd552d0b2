// Package api provides the HTTP API of the SurveyPro backend: company and
// user accounts, the package catalog and purchase, survey authoring and the
// survey taking flow.
//
//	@title						SurveyPro API
//	@version					1.0
//	@description				API for the SurveyPro backend
//
//	@host						localhost:8080
//	@BasePath					/
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the JWT token.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/jwtauth/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/surveypro/saas-backend/api/apicommon"
	"github.com/surveypro/saas-backend/notifications"
	"github.com/surveypro/saas-backend/stripe"
	"github.com/surveypro/saas-backend/subscriptions"
	"github.com/surveypro/saas-backend/surveys"
	"github.com/surveypro/saas-backend/users"
	"github.com/surveypro/saas-backend/validator"
	"go.vocdoni.io/dvote/log"
)

// DefaultTakingSessions is the number of survey taking flows kept in memory
// when the configuration does not set one. The least recently used flow is
// dropped when the limit is reached.
const DefaultTakingSessions = 10000

// Config holds the collaborators and settings of the API. Stripe and
// MailService are optional.
type Config struct {
	Host          string
	Port          int
	Secret        string
	Surveys       *surveys.Store
	Users         *users.Store
	Subscriptions *subscriptions.Subscriptions
	Stripe        *stripe.Service
	MailService   notifications.NotificationService
	// WebAppURL is the public URL of the web app, used to build share and
	// email links.
	WebAppURL string
	// TrackCompletions records completed surveys on the account of the
	// logged user that took them.
	TrackCompletions bool
	// TakingSessions bounds the number of live survey taking flows.
	TakingSessions int
}

// API type represents the API HTTP server with JWT authentication capabilities.
type API struct {
	auth             *jwtauth.JWTAuth
	host             string
	port             int
	router           *chi.Mux
	surveys          *surveys.Store
	users            *users.Store
	subscriptions    *subscriptions.Subscriptions
	stripe           *stripe.Service
	mail             notifications.NotificationService
	validator        *validator.Validator
	takes            *lru.Cache[string, *takingSession]
	webAppURL        string
	trackCompletions bool
}

// New creates a new API HTTP server. It does not start the server. Use Start() for that.
func New(conf *Config) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Surveys == nil || conf.Users == nil || conf.Subscriptions == nil {
		return nil, fmt.Errorf("survey store, user store and subscriptions are required")
	}
	if conf.Secret == "" {
		return nil, fmt.Errorf("a JWT secret is required")
	}
	size := conf.TakingSessions
	if size <= 0 {
		size = DefaultTakingSessions
	}
	takes, err := lru.New[string, *takingSession](size)
	if err != nil {
		return nil, fmt.Errorf("could not create taking sessions cache: %w", err)
	}
	return &API{
		auth:             jwtauth.New("HS256", []byte(conf.Secret), nil),
		host:             conf.Host,
		port:             conf.Port,
		surveys:          conf.Surveys,
		users:            conf.Users,
		subscriptions:    conf.Subscriptions,
		stripe:           conf.Stripe,
		mail:             conf.MailService,
		validator:        validator.New(),
		takes:            takes,
		webAppURL:        conf.WebAppURL,
		trackCompletions: conf.TrackCompletions,
	}, nil
}

// Start starts the API HTTP server (non blocking).
func (a *API) Start() {
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", a.host, a.port), a.initRouter()); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() http.Handler {
	// Create the router with a basic middleware stack
	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Stripe-Signature"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Throttle(100))
	r.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	r.Use(middleware.Timeout(45 * time.Second))

	// company routes
	r.Group(func(r chi.Router) {
		// seek, verify and validate JWT tokens
		r.Use(jwtauth.Verifier(a.auth))
		// load the company named by the token
		r.Use(a.companyAuthenticator)
		// close the company session
		log.Infow("new route", "method", "POST", "path", companiesLogoutEndpoint)
		r.Post(companiesLogoutEndpoint, a.companyLogoutHandler)
		// get the company profile, reachable without a package
		log.Infow("new route", "method", "GET", "path", companiesMeEndpoint)
		r.Get(companiesMeEndpoint, a.companyProfileHandler)
		// buy a package
		log.Infow("new route", "method", "POST", "path", packagePurchaseEndpoint)
		r.Post(packagePurchaseEndpoint, a.purchasePackageHandler)
		// get an owned survey with its analytics
		log.Infow("new route", "method", "GET", "path", surveyEndpoint)
		r.Get(surveyEndpoint, a.surveyHandler)
		// get the share link of an owned survey
		log.Infow("new route", "method", "GET", "path", surveyShareEndpoint)
		r.Get(surveyShareEndpoint, a.surveyShareHandler)
		// get the QR code of an owned survey
		log.Infow("new route", "method", "GET", "path", surveyQREndpoint)
		r.Get(surveyQREndpoint, a.surveyQRHandler)

		// routes that need a paid package
		r.Group(func(r chi.Router) {
			r.Use(a.packageRequired)
			log.Infow("new route", "method", "GET", "path", companiesDashboardEndpoint)
			r.Get(companiesDashboardEndpoint, a.companyDashboardHandler)
			log.Infow("new route", "method", "POST", "path", surveysEndpoint)
			r.With(a.validateBody(apicommon.SurveyRequest{})).Post(surveysEndpoint, a.createSurveyHandler)
			log.Infow("new route", "method", "PUT", "path", surveyEndpoint)
			r.With(a.validateBody(apicommon.SurveyUpdateRequest{})).Put(surveyEndpoint, a.updateSurveyHandler)
		})
	})

	// user routes
	r.Group(func(r chi.Router) {
		r.Use(jwtauth.Verifier(a.auth))
		r.Use(a.userAuthenticator)
		log.Infow("new route", "method", "POST", "path", usersLogoutEndpoint)
		r.Post(usersLogoutEndpoint, a.userLogoutHandler)
		log.Infow("new route", "method", "GET", "path", usersMeEndpoint)
		r.Get(usersMeEndpoint, a.userProfileHandler)
		log.Infow("new route", "method", "GET", "path", usersDashboardEndpoint)
		r.Get(usersDashboardEndpoint, a.userDashboardHandler)
		log.Infow("new route", "method", "PUT", "path", usersFavoriteEndpoint)
		r.Put(usersFavoriteEndpoint, a.toggleFavoriteHandler)
	})

	// Public routes
	r.Group(func(r chi.Router) {
		r.Get(pingEndpoint, func(w http.ResponseWriter, _ *http.Request) {
			if _, err := w.Write([]byte(".")); err != nil {
				log.Warnw("failed to write ping response", "error", err)
			}
		})
		// package catalog
		log.Infow("new route", "method", "GET", "path", packagesEndpoint)
		r.Get(packagesEndpoint, a.packagesHandler)
		// register and login companies
		log.Infow("new route", "method", "POST", "path", companiesEndpoint)
		r.With(a.validateBody(apicommon.RegisterCompanyRequest{})).Post(companiesEndpoint, a.registerCompanyHandler)
		log.Infow("new route", "method", "POST", "path", companiesLoginEndpoint)
		r.With(a.validateBody(apicommon.LoginRequest{})).Post(companiesLoginEndpoint, a.companyLoginHandler)
		// register and login users
		log.Infow("new route", "method", "POST", "path", usersEndpoint)
		r.With(a.validateBody(apicommon.RegisterUserRequest{})).Post(usersEndpoint, a.registerUserHandler)
		log.Infow("new route", "method", "POST", "path", usersLoginEndpoint)
		r.With(a.validateBody(apicommon.LoginRequest{})).Post(usersLoginEndpoint, a.userLoginHandler)
		// list the active surveys
		log.Infow("new route", "method", "GET", "path", surveysEndpoint)
		r.Get(surveysEndpoint, a.listSurveysHandler)
		// take a survey, a user token is optional
		log.Infow("new route", "method", "POST", "path", takeEndpoint)
		r.With(jwtauth.Verifier(a.auth)).Post(takeEndpoint, a.startTakingHandler)
		log.Infow("new route", "method", "GET", "path", takeSessionEndpoint)
		r.Get(takeSessionEndpoint, a.takingInfoHandler)
		log.Infow("new route", "method", "POST", "path", takeAnswerEndpoint)
		r.With(a.validateBody(apicommon.AnswerRequest{})).Post(takeAnswerEndpoint, a.takingAnswerHandler)
		log.Infow("new route", "method", "POST", "path", takeNextEndpoint)
		r.Post(takeNextEndpoint, a.takingNextHandler)
		log.Infow("new route", "method", "POST", "path", takePreviousEndpoint)
		r.Post(takePreviousEndpoint, a.takingPreviousHandler)
		log.Infow("new route", "method", "POST", "path", takeRespondentEndpoint)
		r.Post(takeRespondentEndpoint, a.takingRespondentHandler)
		log.Infow("new route", "method", "POST", "path", takeSubmitEndpoint)
		r.Post(takeSubmitEndpoint, a.takingSubmitHandler)
		// stripe webhook
		if a.stripe != nil {
			log.Infow("new route", "method", "POST", "path", stripeWebhookEndpoint)
			r.Post(stripeWebhookEndpoint, a.stripeWebhookHandler)
		}
	})
	a.router = r
	return r
}

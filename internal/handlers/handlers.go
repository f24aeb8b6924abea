package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/givehub/givehub/docs"
	authhandlers "github.com/givehub/givehub/internal/handlers/auth"
	campaignhandlers "github.com/givehub/givehub/internal/handlers/campaigns"
	donationhandlers "github.com/givehub/givehub/internal/handlers/donations"
	transactionhandlers "github.com/givehub/givehub/internal/handlers/transactions"
	userhandlers "github.com/givehub/givehub/internal/handlers/users"
	"github.com/givehub/givehub/internal/metrics"
	"github.com/givehub/givehub/internal/service"
	"github.com/givehub/givehub/pkg/auth"
)

type AuthHandler interface {
	Register(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Me(w http.ResponseWriter, r *http.Request)
}

type CampaignHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Statistics(w http.ResponseWriter, r *http.Request)
}

type DonationHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ListByCampaign(w http.ResponseWriter, r *http.Request)
	Donate(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	GetByCampaign(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Receipt(w http.ResponseWriter, r *http.Request)
}

type TransactionHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	ListByDonation(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
}

type UserHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	ListPermissions(w http.ResponseWriter, r *http.Request)
	GetUserPermissions(w http.ResponseWriter, r *http.Request)
	AssignPermissions(w http.ResponseWriter, r *http.Request)
	SyncPermissions(w http.ResponseWriter, r *http.Request)
	RemovePermissions(w http.ResponseWriter, r *http.Request)
}

type Handlers struct {
	AuthHandler        AuthHandler
	CampaignHandler    CampaignHandler
	DonationHandler    DonationHandler
	TransactionHandler TransactionHandler
	UserHandler        UserHandler
}

func New(s *service.Services) *Handlers {
	return &Handlers{
		AuthHandler:        authhandlers.New(s.AuthService),
		CampaignHandler:    campaignhandlers.New(s.CampaignService, s.AuthService),
		DonationHandler:    donationhandlers.New(s.DonationService, s.ReceiptService, s.AuthService),
		TransactionHandler: transactionhandlers.New(s.TransactionService, s.AuthService),
		UserHandler:        userhandlers.New(s.UserService, s.AuthService),
	}
}

func (h *Handlers) InitRoutes(r chi.Router) chi.Router {
	r.Use(
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		metrics.HTTPMetrics,
	)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("doc.json"),
	))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", h.AuthHandler.Register)
		r.Post("/login", h.AuthHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.AuthMiddleware)
			r.Get("/me", h.AuthHandler.Me)

			r.Route("/campaigns", func(r chi.Router) {
				r.Get("/", h.CampaignHandler.List)
				r.Post("/", h.CampaignHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.CampaignHandler.Get)
					r.Put("/", h.CampaignHandler.Update)
					r.Delete("/", h.CampaignHandler.Delete)
					r.Post("/approve", h.CampaignHandler.Approve)
					r.Post("/reject", h.CampaignHandler.Reject)
					r.Get("/statistics", h.CampaignHandler.Statistics)
					r.Get("/donations", h.DonationHandler.ListByCampaign)
					r.Post("/donations", h.DonationHandler.Donate)
					r.Get("/donations/{donationID}", h.DonationHandler.GetByCampaign)
				})
			})

			r.Route("/donations", func(r chi.Router) {
				r.Get("/", h.DonationHandler.List)
				r.Post("/", h.DonationHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.DonationHandler.Get)
					r.Put("/", h.DonationHandler.Update)
					r.Delete("/", h.DonationHandler.Delete)
					r.Get("/receipt", h.DonationHandler.Receipt)
					r.Get("/transactions", h.TransactionHandler.ListByDonation)
					r.Post("/transactions", h.TransactionHandler.Create)
				})
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Get("/", h.TransactionHandler.List)
				r.Get("/{id}", h.TransactionHandler.Get)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/", h.UserHandler.List)
				r.Post("/", h.UserHandler.Create)
				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", h.UserHandler.Get)
					r.Put("/", h.UserHandler.Update)
					r.Delete("/", h.UserHandler.Delete)
					r.Get("/permissions", h.UserHandler.GetUserPermissions)
					r.Post("/permissions", h.UserHandler.AssignPermissions)
					r.Put("/permissions", h.UserHandler.SyncPermissions)
					r.Delete("/permissions", h.UserHandler.RemovePermissions)
				})
			})

			r.Get("/permissions", h.UserHandler.ListPermissions)
		})
	})

	return r
}

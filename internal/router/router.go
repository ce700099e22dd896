package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"campusdesk/internal/config"
	"campusdesk/internal/handlers"
	"campusdesk/internal/middleware"
	"campusdesk/internal/models"
	"campusdesk/internal/notify"
	"campusdesk/internal/repository/postgres"
	"campusdesk/internal/rolecache"
	"campusdesk/internal/service"
)

func New(log zerolog.Logger, db *pgxpool.Pool, rdb *redis.Client, cfg config.Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestLogger(log))
	r.Use(middleware.Recoverer(log))
	r.Use(middleware.Metrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.Origin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	}))
	r.Use(httprate.LimitByIP(200, time.Minute))

	// Repos
	ticketRepo := postgres.NewTicketRepo(db)
	userRepo := postgres.NewUserRepo(db)
	committeeRepo := postgres.NewCommitteeRepo(db)
	statusRepo := postgres.NewStatusRepo(db)

	roles := rolecache.New(rdb, userRepo, time.Duration(cfg.RoleCacheTTL)*time.Second)

	// Notification fan-out: channels are optional, nil means disabled.
	var chat notify.ChatSender
	if cfg.SlackWebhookURL != "" {
		chat = notify.NewSlackWebhook(cfg.SlackWebhookURL, "")
	}
	var mail notify.MailSender
	if cfg.SMTPHost != "" {
		mail = notify.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPFrom)
	}
	notifier := notify.New(log, chat, mail)

	// Services + handlers
	ticketSvc := service.NewTicketService(log, ticketRepo, userRepo, committeeRepo, statusRepo, notifier)
	authSvc := service.NewAuthService(userRepo, cfg.SessionSecret)

	th := handlers.NewTicketHTTP(ticketSvc)
	ah := handlers.NewAuthHTTP(authSvc, userRepo)
	uh := handlers.NewUserHTTP(userRepo, roles)
	ch := handlers.NewCommitteeHTTP(committeeRepo, userRepo)
	rh := handlers.NewReportsHTTP(ticketRepo)
	sh := handlers.NewStatusHTTP(statusRepo)

	// chi requires all middleware before the first route.
	r.Use(middleware.WithAuth(log, cfg, roles))

	// Ops
	r.Get("/healthz", handlers.Health(db, rdb))
	r.Handle("/metrics", promhttp.Handler())

	// Auth
	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", ah.Register())
		r.Post("/login", ah.Login())
		r.Post("/logout", ah.Logout())
		r.Get("/me", ah.Me())
	})

	adminLevel := middleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin)

	r.Route("/api/tickets", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", th.List())
		r.Post("/", th.Create())
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", th.Get())
			r.Patch("/", th.Update())
			r.With(adminLevel).Delete("/", th.Delete())
			r.Post("/comments", th.AddComment())
			r.With(adminLevel).Post("/forward", th.Forward())
			r.Route("/committee-tags", func(r chi.Router) {
				r.Get("/", th.ListTags())
				r.With(adminLevel).Post("/", th.AddTag())
				r.With(adminLevel).Delete("/", th.DeleteTag())
			})
		})
	})

	r.Route("/api/committees", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/", ch.List())
		r.With(middleware.RequireRoles(models.RoleSuperAdmin)).Post("/", ch.Create())
		r.Get("/{id}/members", ch.Members())
		r.With(middleware.RequireRoles(models.RoleSuperAdmin)).Post("/{id}/members", ch.AddMember())
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(adminLevel).Get("/", uh.List())
		r.With(middleware.RequireRoles(models.RoleSuperAdmin)).Patch("/{id}/role", uh.UpdateRole())
		r.With(middleware.RequireRoles(models.RoleSuperAdmin)).Patch("/{id}/active", uh.SetActive())
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.With(adminLevel).Get("/summary", rh.Summary())
	})

	r.With(middleware.RequireAuth).Get("/api/statuses", sh.List())

	return r
}

package server

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/trustissue/trustissue/internal/trustissue/config"
	"github.com/trustissue/trustissue/internal/trustissue/handlers"
	"github.com/trustissue/trustissue/internal/trustissue/middleware"
	"github.com/trustissue/trustissue/internal/trustissue/models"
	"github.com/trustissue/trustissue/internal/trustissue/repository"
	"github.com/trustissue/trustissue/internal/trustissue/service"
	"github.com/trustissue/trustissue/internal/trustissue/storage"
	"golang.org/x/crypto/bcrypt"
)

// Server represents the HTTP server
type Server struct {
	cfg        *config.Config
	repo       repository.Repository
	handler    *handlers.Handler
	httpServer *http.Server
}

// NewServer creates a new server backed by the given repository.
func NewServer(cfg *config.Config, repo repository.Repository) *Server {
	accounts := service.NewAccounts(repo)
	products := service.NewProducts(repo)
	interests := service.NewInterests(repo)
	withdrawals := service.NewWithdrawals(repo, cfg.RefundRejectedWithdrawals)
	files := storage.NewFileStore(cfg.UploadDir)

	handler := handlers.NewHandler(accounts, products, interests, withdrawals, files, cfg.JWTSecret)

	return &Server{
		cfg:     cfg,
		repo:    repo,
		handler: handler,
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	// Initialize repository
	if err := s.repo.InitDB(s.cfg.DatabaseURI); err != nil {
		return err
	}

	if err := s.seedAdmin(); err != nil {
		return err
	}

	// Create HTTP server
	s.httpServer = &http.Server{
		Addr:    s.cfg.RunAddress,
		Handler: s.Router(),
	}

	// Start server
	log.Printf("Starting server on %s", s.cfg.RunAddress)
	return s.httpServer.ListenAndServe()
}

// Router builds the role-scoped route tree.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()

	// Basic middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("trusTissue API is running"))
	})

	// Uploaded files are served as opaque blobs addressed by path.
	uploadsDir := http.Dir(s.cfg.UploadDir)
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(uploadsDir)))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/signup", s.handler.Signup)
		r.Post("/login", s.handler.Login)
	})

	r.Route("/api/seller", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleSeller, s.cfg.JWTSecret))

		r.Post("/upload-product", s.handler.UploadProduct)
		r.Get("/products", s.handler.SellerProducts)
		r.Put("/edit-product/{id}", s.handler.EditProduct)
		r.Delete("/delete-product/{id}", s.handler.DeleteProduct)
		r.Get("/interest-requests", s.handler.SellerInterests)
		r.Get("/balance", s.handler.SellerBalance)
		r.Post("/withdraw", s.handler.RequestWithdrawal)
		r.Get("/withdrawals", s.handler.SellerWithdrawals)
	})

	r.Route("/api/buyer", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleBuyer, s.cfg.JWTSecret))

		r.Get("/approved-products", s.handler.ApprovedProducts)
		r.Post("/express-interest", s.handler.ExpressInterest)
		r.Get("/my-interests", s.handler.MyInterests)
		r.Get("/verified-products", s.handler.VerifiedProducts)
		r.Post("/upload-payment/{interestID}", s.handler.UploadPayment)
		r.Get("/my-purchases", s.handler.MyPurchases)
	})

	r.Route("/api/verifier", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleVerifier, s.cfg.JWTSecret))

		r.Get("/pending-products", s.handler.PendingProducts)
		r.Patch("/verify/{id}", s.handler.VerifyProduct)
		r.Get("/pending-interests", s.handler.PendingInterests)
		r.Patch("/verify-interest/{id}", s.handler.VerifyInterest)
		r.Get("/payment-uploads", s.handler.PaymentUploads)
		r.Patch("/confirm-payment/{id}", s.handler.ConfirmPayment)
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(middleware.RequireRole(models.RoleAdmin, s.cfg.JWTSecret))

		r.Post("/create-verifier", s.handler.CreateVerifier)
		r.Get("/verifiers", s.handler.ListVerifiers)
		r.Put("/edit-verifier/{id}", s.handler.EditVerifier)
		r.Delete("/delete-verifier/{id}", s.handler.DeleteVerifier)
		r.Get("/all-products", s.handler.AllProducts)
		r.Get("/withdrawals", s.handler.PendingWithdrawals)
		r.Patch("/withdrawals/{id}", s.handler.ReviewWithdrawal)
		r.Post("/credit-seller", s.handler.CreditSeller)
	})

	return r
}

// seedAdmin creates the admin account on first start when configured.
func (s *Server) seedAdmin() error {
	if s.cfg.AdminEmail == "" || s.cfg.AdminPassword == "" {
		return nil
	}

	ctx := context.Background()
	existing, err := s.repo.GetAccountByEmail(ctx, models.RoleAdmin, s.cfg.AdminEmail)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	_, err = s.repo.CreateAccount(ctx, &models.Account{
		Role:         models.RoleAdmin,
		Name:         "admin",
		Email:        s.cfg.AdminEmail,
		PasswordHash: string(hash),
	})
	if err != nil {
		return err
	}

	log.Printf("Seeded admin account %s", s.cfg.AdminEmail)
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Shutdown HTTP server
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return err
		}
	}

	// Close repository
	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			return err
		}
	}

	return nil
}

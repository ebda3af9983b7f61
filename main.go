package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"collabstudy/bookings"
	"collabstudy/config"
	"collabstudy/db"
	"collabstudy/identity"
	"collabstudy/logger"
	"collabstudy/middleware"
	"collabstudy/notes"
	"collabstudy/ratelim"
	"collabstudy/reviews"
	"collabstudy/routes"
	"collabstudy/sessions"
	"collabstudy/users"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains; preload")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// requestLogging tags each request with an id and logs method, path,
// remote address, and duration.
func requestLogging(log *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		w.Header().Set("X-Request-Id", requestID)
		next.ServeHTTP(w, r)
		log.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("remote", r.RemoteAddr),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

// health is a simple liveness handler.
func health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func setupRouter(store *db.Store, auth *middleware.Auth, rl *ratelim.RateLimiter, log *zap.Logger) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", health)

	routes.AddUserRoutes(router, users.NewHandler(store, log), auth, rl)
	routes.AddSessionRoutes(router, sessions.NewHandler(store, log), auth, rl)
	routes.AddReviewRoutes(router, reviews.NewHandler(store, log), rl)
	routes.AddBookingRoutes(router, bookings.NewHandler(store, log), auth)
	routes.AddNoteRoutes(router, notes.NewHandler(store, log), auth)

	return router
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	client, err := db.Connect(context.Background(), cfg.MongoURI)
	if err != nil {
		log.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	if err := db.EnsureIndexes(context.Background(), client, cfg.DBName); err != nil {
		log.Fatal("failed to create indexes", zap.Error(err))
	}
	store := db.NewStore(client, cfg.DBName)

	verifier := identity.NewTrustVerifier(cfg.TrustCertsURL, cfg.TrustProjectID)
	auth := middleware.NewAuth(verifier, log)
	rateLimiter := ratelim.NewRateLimiter()

	router := setupRouter(store, auth, rateLimiter, log)

	// middleware chain: logging -> security headers -> CORS -> router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := requestLogging(log, securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen failed", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	if err := client.Disconnect(ctx); err != nil {
		log.Error("mongo disconnect failed", zap.Error(err))
	}
	log.Info("server stopped")
}

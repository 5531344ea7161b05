package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"microblog/internal/common"
	"microblog/internal/wire"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	app, err := wire.InitializeApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	router := setupRouter(app)

	server := &http.Server{
		Addr:           fmt.Sprintf("%s:%s", app.Config.Server.Host, app.Config.Server.Port),
		Handler:        router,
		ReadTimeout:    time.Duration(app.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(app.Config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	// Start server in a goroutine
	go func() {
		app.Logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		app.Logger.Errorf("Server forced to shutdown: %v", err)
	}

	app.Logger.Info("Server gracefully stopped")
}

// setupRouter configures HTTP routes
func setupRouter(app *wire.Application) *mux.Router {
	router := mux.NewRouter()

	router.Use(common.CORSMiddleware)
	router.Use(common.LoggingMiddleware(app.Logger))
	router.Use(app.Metrics.Middleware)

	// Health check and metrics stay outside the authenticated surface
	router.HandleFunc("/health", healthCheckHandler).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	// Uploaded files are served statically
	router.PathPrefix("/media/").Handler(
		http.StripPrefix("/media/", http.FileServer(http.Dir(app.Config.Media.Dir))),
	).Methods("GET")

	// Authenticated API
	api := router.PathPrefix("/api").Subrouter()
	api.Use(app.Auth.Middleware)

	api.HandleFunc("/tweets", app.Feed.GetFeed).Methods("GET")
	api.HandleFunc("/tweets", app.Feed.CreateTweet).Methods("POST")
	api.HandleFunc("/tweets/{tweetID}", app.Feed.DeleteTweet).Methods("DELETE")
	api.HandleFunc("/tweets/{tweetID}/likes", app.Feed.LikeTweet).Methods("POST")
	api.HandleFunc("/tweets/{tweetID}/likes", app.Feed.UnlikeTweet).Methods("DELETE")

	api.HandleFunc("/dashboard", app.Dashboard.Overview).Methods("GET")

	api.HandleFunc("/medias", app.Media.Upload).Methods("POST")

	api.HandleFunc("/users/me", app.Users.Me).Methods("GET")
	api.HandleFunc("/users", app.Users.List).Methods("GET")
	api.HandleFunc("/users/{userID}", app.Users.Profile).Methods("GET")
	api.HandleFunc("/users/{userID}/followers", app.Users.Followers).Methods("GET")
	api.HandleFunc("/users/{userID}/following", app.Users.Following).Methods("GET")
	api.HandleFunc("/users/{userID}/follow", app.Users.Follow).Methods("POST")
	api.HandleFunc("/users/{userID}/follow", app.Users.Unfollow).Methods("DELETE")

	return router
}

// healthCheckHandler provides basic health check
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	common.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "microblog-api",
	})
}

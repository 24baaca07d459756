package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/telecomnet/telecom-social/internal/api/recovery"
	"github.com/telecomnet/telecom-social/internal/auth"
	"github.com/telecomnet/telecom-social/internal/services"
)

// Deps are the services and adapters the router serves.
type Deps struct {
	Users         *services.UserService
	Profiles      *services.ProfileService
	Connections   *services.ConnectionService
	Conversations *services.ConversationService
	Banking       *services.BankingService
	Posts         *services.PostService
	Notifications *services.NotificationService

	Auth           auth.Authenticator
	Healthy        func() bool
	Components     func() map[string]bool
	MetricsEnabled bool
}

// NewRouter creates the HTTP router with all API routes.
func NewRouter(d Deps) *mux.Router {
	router := mux.NewRouter()

	// Global middlewares
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler(d.Healthy, d.Components)
	userHandler := NewUserHandler(d.Users, d.Profiles)
	connectionHandler := NewConnectionHandler(d.Connections)
	conversationHandler := NewConversationHandler(d.Conversations)
	postHandler := NewPostHandler(d.Posts, d.Notifications)
	bankingHandler := NewBankingHandler(d.Banking)

	// Unauthenticated endpoints
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")
	if d.MetricsEnabled {
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth.Middleware(d.Auth))

	// Users and profiles
	api.Handle("/users", auth.RequireAdmin(http.HandlerFunc(userHandler.CreateUser))).Methods("POST")
	api.HandleFunc("/users", userHandler.ListUsers).Methods("GET")
	api.HandleFunc("/users/{userId}", userHandler.GetUser).Methods("GET")
	api.HandleFunc("/profile/me", userHandler.GetMyProfile).Methods("GET")
	api.HandleFunc("/profile/me", userHandler.UpdateMyProfile).Methods("PATCH")

	// Connection registry
	api.HandleFunc("/connections/requests", connectionHandler.SendRequest).Methods("POST")
	api.HandleFunc("/connections/requests/incoming", connectionHandler.Incoming).Methods("GET")
	api.HandleFunc("/connections/requests/outgoing", connectionHandler.Outgoing).Methods("GET")
	api.HandleFunc("/connections/requests/{requestId}/action", connectionHandler.Respond).Methods("POST")
	api.HandleFunc("/connections", connectionHandler.ListConnections).Methods("GET")
	api.HandleFunc("/connections/status/{userId}", connectionHandler.Status).Methods("GET")

	// Conversations and messages
	api.HandleFunc("/conversations", conversationHandler.StartConversation).Methods("POST")
	api.HandleFunc("/conversations", conversationHandler.ListConversations).Methods("GET")
	api.HandleFunc("/conversations/{conversationId}", conversationHandler.GetConversation).Methods("GET")
	api.HandleFunc("/conversations/{conversationId}/messages", conversationHandler.AppendMessage).Methods("POST")
	api.HandleFunc("/conversations/{conversationId}/messages", conversationHandler.ListMessages).Methods("GET")
	api.HandleFunc("/messages/{messageId}/read", conversationHandler.MarkRead).Methods("POST")

	// Posts and notifications
	api.HandleFunc("/posts", postHandler.CreatePost).Methods("POST")
	api.HandleFunc("/posts", postHandler.ListPosts).Methods("GET")
	api.HandleFunc("/posts/feed", postHandler.Feed).Methods("GET")
	api.HandleFunc("/notifications", postHandler.ListNotifications).Methods("GET")
	api.HandleFunc("/notifications/{notificationId}/read", postHandler.MarkNotificationRead).Methods("POST")

	// Platform banking details
	api.HandleFunc("/platform/banking-details/active", bankingHandler.Active).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(auth.RequireAdmin)
	admin.HandleFunc("/banking-details", bankingHandler.List).Methods("GET")
	admin.HandleFunc("/banking-details", bankingHandler.Create).Methods("POST")
	admin.HandleFunc("/banking-details/validate", bankingHandler.Validate).Methods("POST")
	admin.HandleFunc("/banking-details/{recordId}", bankingHandler.Update).Methods("PUT")

	return router
}

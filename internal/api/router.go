package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/miguelsv/chatline-be/internal/api/handlers"
	"github.com/miguelsv/chatline-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(
	userService services.UserServiceProvider,
	contactService services.ContactServiceProvider,
	messageService services.MessageServiceProvider,
	uploadDir string,
	allowedOrigin string,
) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{allowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	contactHandler := handlers.NewContactHandler(contactService)
	messageHandler := handlers.NewMessageHandler(messageService)
	uploadHandler := handlers.NewUploadHandler(userService, uploadDir)

	r.Route("/api", func(r chi.Router) {
		r.Post("/users", userHandler.Register)
		r.Get("/users", userHandler.List)
		r.Post("/login", userHandler.Login)
		r.Post("/upload-profile-picture", uploadHandler.UploadProfilePicture)

		r.Post("/contacts", contactHandler.Add)
		r.Get("/contacts", contactHandler.List)

		r.Post("/messages", messageHandler.Send)
		r.Get("/messages", messageHandler.List)
		r.Post("/messages/read", messageHandler.MarkRead)

		r.Post("/ban-user", userHandler.Ban)
		r.Post("/unban-user", userHandler.Unban)
	})

	// Uploaded profile pictures are served statically.
	uploads := http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir)))
	r.Get("/uploads/*", uploads.ServeHTTP)

	return r
}

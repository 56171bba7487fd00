package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/signup", apiHandler.SignupHandler)
		r.Post("/login", apiHandler.LoginHandler)
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		// User-authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			// Organizations and documents
			r.Post("/organizations", apiHandler.CreateOrganizationHandler)
			r.Get("/organizations", apiHandler.ListOrganizationsHandler)
			r.Get("/organizations/{orgID}/documents", apiHandler.ListDocumentsHandler)
			r.Post("/documents", apiHandler.RegisterDocumentHandler)

			// Proposals and sections
			r.Post("/proposals", apiHandler.CreateProposalHandler)
			r.Get("/proposals", apiHandler.ListProposalsHandler)
			r.Get("/proposals/{proposalID}", apiHandler.GetProposalHandler)
			r.Patch("/proposals/{proposalID}", apiHandler.UpdateProposalHandler)
			r.Post("/proposals/{proposalID}/sections", apiHandler.CreateSectionHandler)
			r.Get("/proposals/{proposalID}/sections", apiHandler.ListSectionsHandler)
			r.Patch("/sections/{sectionID}", apiHandler.UpdateSectionHandler)
			r.Get("/proposals/{proposalID}/document", apiHandler.AssembleDocumentHandler)

			// Conversation and memory
			r.Post("/proposals/{proposalID}/messages", apiHandler.CreateMessageHandler)
			r.Get("/proposals/{proposalID}/messages", apiHandler.ListMessagesHandler)
			r.Post("/proposals/{proposalID}/chat", apiHandler.ProcessTurnHandler)
			r.Post("/proposals/{proposalID}/memory", apiHandler.CreateMemoryHandler)
			r.Get("/proposals/{proposalID}/memory", apiHandler.ListMemoryHandler)
		})
	})

	return r
}

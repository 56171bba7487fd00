package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"grantwise.io/copilot/internal/auth"
	"grantwise.io/copilot/internal/core"
	"grantwise.io/copilot/internal/store"
)

type APIHandler struct {
	accounts  *core.AccountService
	proposals *core.ProposalService
	documents *core.DocumentService
	chat      *core.ChatService
}

func NewAPIHandler(accounts *core.AccountService, proposals *core.ProposalService, documents *core.DocumentService, chat *core.ChatService) *APIHandler {
	return &APIHandler{
		accounts:  accounts,
		proposals: proposals,
		documents: documents,
		chat:      chat,
	}
}

type contextKey string

const userIDKey contextKey = "userID"

func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		email, err := auth.ValidateJWT(tokenString)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		user, err := h.accounts.GetUserByEmail(email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				http.Error(w, "User not found", http.StatusUnauthorized)
				return
			}
			log.Printf("Error in JWTAuthMiddleware for user %s: %v", email, err)
			http.Error(w, "Failed to process user identity", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, user.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// writeCoreError maps core/store failures onto HTTP statuses: unresolved ids
// become 404, everything else is a 500.
func writeCoreError(w http.ResponseWriter, err error, logContext string) {
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	log.Printf("%s: %v", logContext, err)
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func urlParamInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

type SignupRequest struct {
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Password string `json:"password"`
}

func (h *APIHandler) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.FullName == "" || req.Password == "" {
		http.Error(w, "Email, full name and password are required", http.StatusBadRequest)
		return
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("Error hashing password for user %s: %v", req.Email, err)
		http.Error(w, "Failed to process password", http.StatusInternalServerError)
		return
	}

	user, err := h.accounts.CreateUser(req.Email, req.FullName, hashedPassword)
	if err != nil {
		log.Printf("Error creating user %s: %v", req.Email, err)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(user)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.accounts.GetUserByEmail(req.Email)
	if err != nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT(req.Email)
	if err != nil {
		log.Printf("Error generating JWT for user %s: %v", req.Email, err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]string{"token": token})
}

type CreateOrganizationRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
}

func (h *APIHandler) CreateOrganizationHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int64)

	var req CreateOrganizationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Organization name is required", http.StatusBadRequest)
		return
	}

	org, err := h.accounts.CreateOrganization(userID, req.Name, req.Description)
	if err != nil {
		writeCoreError(w, err, "Error creating organization")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(org)
}

func (h *APIHandler) ListOrganizationsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int64)

	orgs, err := h.accounts.GetOrganizationsByUser(userID)
	if err != nil {
		writeCoreError(w, err, "Error listing organizations")
		return
	}
	json.NewEncoder(w).Encode(orgs)
}

type RegisterDocumentRequest struct {
	OrganizationID int64  `json:"organization_id"`
	Filename       string `json:"filename"`
	FileType       string `json:"file_type"`
	FileSize       int64  `json:"file_size"`
}

func (h *APIHandler) RegisterDocumentHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Filename == "" {
		http.Error(w, "Filename is required", http.StatusBadRequest)
		return
	}
	fileType := store.FileType(req.FileType)
	if !fileType.Valid() {
		http.Error(w, "Invalid file type: "+req.FileType, http.StatusBadRequest)
		return
	}

	doc, err := h.documents.Register(req.OrganizationID, req.Filename, fileType, req.FileSize)
	if err != nil {
		writeCoreError(w, err, "Error registering document")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

func (h *APIHandler) ListDocumentsHandler(w http.ResponseWriter, r *http.Request) {
	orgID, err := urlParamInt64(r, "orgID")
	if err != nil {
		http.Error(w, "Invalid organization id", http.StatusBadRequest)
		return
	}

	docs, err := h.documents.GetDocumentsByOrganization(orgID)
	if err != nil {
		writeCoreError(w, err, "Error listing documents")
		return
	}
	json.NewEncoder(w).Encode(docs)
}

type CreateProposalRequest struct {
	OrganizationID int64   `json:"organization_id"`
	Title          string  `json:"title"`
	Description    *string `json:"description,omitempty"`
}

func (h *APIHandler) CreateProposalHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int64)

	var req CreateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Proposal title is required", http.StatusBadRequest)
		return
	}

	proposal, err := h.proposals.CreateProposal(userID, req.OrganizationID, req.Title, req.Description)
	if err != nil {
		writeCoreError(w, err, "Error creating proposal")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(proposal)
}

func (h *APIHandler) ListProposalsHandler(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(int64)

	proposals, err := h.proposals.GetProposalsByUser(userID)
	if err != nil {
		writeCoreError(w, err, "Error listing proposals")
		return
	}
	json.NewEncoder(w).Encode(proposals)
}

func (h *APIHandler) GetProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	proposal, err := h.proposals.GetProposal(proposalID)
	if err != nil {
		writeCoreError(w, err, "Error getting proposal")
		return
	}
	json.NewEncoder(w).Encode(proposal)
}

type UpdateProposalRequest struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Status       *string `json:"status,omitempty"`
	CurrentPhase *string `json:"current_phase,omitempty"`
}

func (h *APIHandler) UpdateProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	var req UpdateProposalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	upd := store.ProposalUpdate{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.Status != nil {
		status := store.ProposalStatus(*req.Status)
		if !status.Valid() {
			http.Error(w, "Invalid status: "+*req.Status, http.StatusBadRequest)
			return
		}
		upd.Status = &status
	}
	if req.CurrentPhase != nil {
		phase := store.ProposalPhase(*req.CurrentPhase)
		if !phase.Valid() {
			http.Error(w, "Invalid phase: "+*req.CurrentPhase, http.StatusBadRequest)
			return
		}
		upd.CurrentPhase = &phase
	}

	proposal, err := h.proposals.UpdateProposal(proposalID, upd)
	if err != nil {
		writeCoreError(w, err, "Error updating proposal")
		return
	}
	json.NewEncoder(w).Encode(proposal)
}

type CreateSectionRequest struct {
	Title      string  `json:"title"`
	Content    *string `json:"content,omitempty"`
	OrderIndex int     `json:"order_index"`
}

func (h *APIHandler) CreateSectionHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	var req CreateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Section title is required", http.StatusBadRequest)
		return
	}

	section, err := h.proposals.CreateSection(proposalID, req.Title, req.Content, req.OrderIndex)
	if err != nil {
		writeCoreError(w, err, "Error creating section")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(section)
}

func (h *APIHandler) ListSectionsHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	sections, err := h.proposals.GetSections(proposalID)
	if err != nil {
		writeCoreError(w, err, "Error listing sections")
		return
	}
	json.NewEncoder(w).Encode(sections)
}

type UpdateSectionRequest struct {
	Title       *string `json:"title,omitempty"`
	Content     *string `json:"content,omitempty"`
	OrderIndex  *int    `json:"order_index,omitempty"`
	IsCompleted *bool   `json:"is_completed,omitempty"`
}

func (h *APIHandler) UpdateSectionHandler(w http.ResponseWriter, r *http.Request) {
	sectionID, err := urlParamInt64(r, "sectionID")
	if err != nil {
		http.Error(w, "Invalid section id", http.StatusBadRequest)
		return
	}

	var req UpdateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	section, err := h.proposals.UpdateSection(sectionID, store.SectionUpdate{
		Title:       req.Title,
		Content:     req.Content,
		OrderIndex:  req.OrderIndex,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		writeCoreError(w, err, "Error updating section")
		return
	}
	json.NewEncoder(w).Encode(section)
}

type ChatMessageRequest struct {
	Role        string `json:"role"`
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

func (r *ChatMessageRequest) validate() (store.MessageRole, store.MessageType, string) {
	role := store.MessageRole(r.Role)
	if !role.Valid() {
		return "", "", "Invalid role: " + r.Role
	}
	messageType := store.MessageType(r.MessageType)
	if r.MessageType == "" {
		messageType = store.MessageTypeChat
	}
	if !messageType.Valid() {
		return "", "", "Invalid message type: " + r.MessageType
	}
	if r.Content == "" {
		return "", "", "Message content cannot be empty"
	}
	return role, messageType, ""
}

// CreateMessageHandler persists a message with no synthesis.
func (h *APIHandler) CreateMessageHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	role, messageType, problem := req.validate()
	if problem != "" {
		http.Error(w, problem, http.StatusBadRequest)
		return
	}

	msg, err := h.chat.CreateMessage(proposalID, role, req.Content, messageType)
	if err != nil {
		writeCoreError(w, err, "Error creating message")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(msg)
}

// ProcessTurnHandler runs a full conversational turn and returns the assistant
// message.
func (h *APIHandler) ProcessTurnHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	var req ChatMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	role, messageType, problem := req.validate()
	if problem != "" {
		http.Error(w, problem, http.StatusBadRequest)
		return
	}

	assistantMsg, err := h.chat.ProcessTurn(proposalID, role, req.Content, messageType)
	if err != nil {
		writeCoreError(w, err, "Error processing turn")
		return
	}
	json.NewEncoder(w).Encode(assistantMsg)
}

func (h *APIHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	messages, err := h.chat.GetMessages(proposalID)
	if err != nil {
		writeCoreError(w, err, "Error listing messages")
		return
	}
	json.NewEncoder(w).Encode(messages)
}

type CreateMemoryRequest struct {
	MemoryType string  `json:"memory_type"`
	Content    string  `json:"content"`
	Source     *string `json:"source,omitempty"`
}

func (h *APIHandler) CreateMemoryHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	var req CreateMemoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	memoryType := store.MemoryType(req.MemoryType)
	if !memoryType.Valid() {
		http.Error(w, "Invalid memory type: "+req.MemoryType, http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Memory content cannot be empty", http.StatusBadRequest)
		return
	}

	entry, err := h.chat.CreateMemory(proposalID, memoryType, req.Content, req.Source)
	if err != nil {
		writeCoreError(w, err, "Error creating memory entry")
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(entry)
}

func (h *APIHandler) ListMemoryHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	entries, err := h.chat.GetMemory(proposalID)
	if err != nil {
		writeCoreError(w, err, "Error listing memory entries")
		return
	}
	json.NewEncoder(w).Encode(entries)
}

func (h *APIHandler) AssembleDocumentHandler(w http.ResponseWriter, r *http.Request) {
	proposalID, err := urlParamInt64(r, "proposalID")
	if err != nil {
		http.Error(w, "Invalid proposal id", http.StatusBadRequest)
		return
	}

	doc, err := h.proposals.AssembleDocument(proposalID)
	if err != nil {
		writeCoreError(w, err, "Error assembling document")
		return
	}
	json.NewEncoder(w).Encode(doc)
}

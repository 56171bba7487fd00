package store

import "time"

// Closed enumerations. Values match the persisted column values; Valid lets the
// boundary layer reject malformed input before any core operation runs.

type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeDOCX FileType = "docx"
	FileTypeDOC  FileType = "doc"
)

func (t FileType) Valid() bool {
	switch t {
	case FileTypePDF, FileTypeDOCX, FileTypeDOC:
		return true
	}
	return false
}

type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusCompleted  UploadStatus = "completed"
	UploadStatusFailed     UploadStatus = "failed"
)

func (s UploadStatus) Valid() bool {
	switch s {
	case UploadStatusPending, UploadStatusProcessing, UploadStatusCompleted, UploadStatusFailed:
		return true
	}
	return false
}

type ProposalStatus string

const (
	ProposalStatusPlanning  ProposalStatus = "planning"
	ProposalStatusDrafting  ProposalStatus = "drafting"
	ProposalStatusCompleted ProposalStatus = "completed"
	ProposalStatusArchived  ProposalStatus = "archived"
)

func (s ProposalStatus) Valid() bool {
	switch s {
	case ProposalStatusPlanning, ProposalStatusDrafting, ProposalStatusCompleted, ProposalStatusArchived:
		return true
	}
	return false
}

// ProposalPhase is independent of ProposalStatus. No pairing between the two is
// enforced anywhere; they are separate axes.
type ProposalPhase string

const (
	PhasePlanning ProposalPhase = "planning"
	PhaseDrafting ProposalPhase = "drafting"
)

func (p ProposalPhase) Valid() bool {
	return p == PhasePlanning || p == PhaseDrafting
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

type MessageType string

const (
	MessageTypeChat     MessageType = "chat"
	MessageTypePlanning MessageType = "planning"
	MessageTypeFeedback MessageType = "feedback"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageTypeChat, MessageTypePlanning, MessageTypeFeedback:
		return true
	}
	return false
}

type MemoryType string

const (
	MemoryOrganizationInfo MemoryType = "organization_info"
	MemoryUserFeedback     MemoryType = "user_feedback"
	MemoryDocumentInsights MemoryType = "document_insights"
	MemoryPlanningNotes    MemoryType = "planning_notes"
)

func (t MemoryType) Valid() bool {
	switch t {
	case MemoryOrganizationInfo, MemoryUserFeedback, MemoryDocumentInsights, MemoryPlanningNotes:
		return true
	}
	return false
}

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	PasswordHash string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type Organization struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"user_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"` // Nullable
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Document struct {
	ID             int64        `json:"id"`
	OrganizationID int64        `json:"organization_id"`
	Filename       string       `json:"filename"`
	FilePath       string       `json:"file_path"` // Derived, see core.DocumentService
	FileType       FileType     `json:"file_type"`
	FileSize       int64        `json:"file_size"`
	UploadStatus   UploadStatus `json:"upload_status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

type Proposal struct {
	ID             int64          `json:"id"`
	UserID         int64          `json:"user_id"`
	OrganizationID int64          `json:"organization_id"`
	Title          string         `json:"title"`
	Description    *string        `json:"description"` // Nullable
	Status         ProposalStatus `json:"status"`
	CurrentPhase   ProposalPhase  `json:"current_phase"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

type Section struct {
	ID          int64     `json:"id"`
	ProposalID  int64     `json:"proposal_id"`
	Title       string    `json:"title"`
	Content     *string   `json:"content"` // Nullable
	OrderIndex  int       `json:"order_index"`
	IsCompleted bool      `json:"is_completed"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ChatMessage struct {
	ID          string      `json:"id"` // Using UUID for external ID
	ProposalID  int64       `json:"proposal_id"`
	Role        MessageRole `json:"role"`
	Content     string      `json:"content"`
	MessageType MessageType `json:"message_type"`
	CreatedAt   time.Time   `json:"created_at"`
}

type MemoryEntry struct {
	ID         string     `json:"id"` // Using UUID for external ID
	ProposalID int64      `json:"proposal_id"`
	MemoryType MemoryType `json:"memory_type"`
	Content    string     `json:"content"`
	Source     *string    `json:"source"` // Nullable; e.g. a document name
	CreatedAt  time.Time  `json:"created_at"`
}

// ProposalOverview is the joined proposal+organization row the context
// assembler reads in one query.
type ProposalOverview struct {
	ProposalID              int64
	OrganizationID          int64
	ProposalTitle           string
	ProposalDescription     *string
	Status                  ProposalStatus
	CurrentPhase            ProposalPhase
	OrganizationName        string
	OrganizationDescription *string
}

// ProposalUpdate and SectionUpdate carry partial updates: nil means "leave the
// field untouched". Updates always bump updated_at.
type ProposalUpdate struct {
	Title        *string
	Description  *string
	Status       *ProposalStatus
	CurrentPhase *ProposalPhase
}

type SectionUpdate struct {
	Title       *string
	Content     *string
	OrderIndex  *int
	IsCompleted *bool
}

package core

import (
	"fmt"
	"strings"
	"time"

	"grantwise.io/copilot/internal/store"
)

// ProposalService owns the lifecycle rules for proposals and their sections:
// parent checks on creation, partial updates that never touch unspecified
// fields, and document assembly from completed sections.
type ProposalService struct {
	dbStore *store.SQLiteStore
}

func NewProposalService(db *store.SQLiteStore) *ProposalService {
	return &ProposalService{dbStore: db}
}

// CreateProposal verifies both parents exist before any write; a dangling
// user or organization id fails with store.ErrNotFound. New proposals start
// with status and phase both 'planning'.
func (s *ProposalService) CreateProposal(userID, organizationID int64, title string, description *string) (*store.Proposal, error) {
	if _, err := s.dbStore.GetUserByID(userID); err != nil {
		return nil, fmt.Errorf("failed to verify user %d: %w", userID, err)
	}
	if _, err := s.dbStore.GetOrganizationByID(organizationID); err != nil {
		return nil, fmt.Errorf("failed to verify organization %d: %w", organizationID, err)
	}
	return s.dbStore.CreateProposal(userID, organizationID, title, description)
}

func (s *ProposalService) GetProposal(id int64) (*store.Proposal, error) {
	return s.dbStore.GetProposalByID(id)
}

func (s *ProposalService) GetProposalsByUser(userID int64) ([]store.Proposal, error) {
	return s.dbStore.GetProposalsByUserID(userID)
}

// UpdateProposal applies any subset of {title, description, status, phase}.
// Status and phase are independent axes; no transition graph is enforced, any
// value may follow any other.
func (s *ProposalService) UpdateProposal(id int64, upd store.ProposalUpdate) (*store.Proposal, error) {
	return s.dbStore.UpdateProposal(id, upd)
}

// CreateSection verifies the proposal exists first. Order indexes are
// caller-assigned and not checked for uniqueness; duplicates are tolerated.
func (s *ProposalService) CreateSection(proposalID int64, title string, content *string, orderIndex int) (*store.Section, error) {
	if _, err := s.dbStore.GetProposalByID(proposalID); err != nil {
		return nil, fmt.Errorf("failed to verify proposal %d: %w", proposalID, err)
	}
	return s.dbStore.CreateSection(proposalID, title, content, orderIndex)
}

func (s *ProposalService) UpdateSection(id int64, upd store.SectionUpdate) (*store.Section, error) {
	return s.dbStore.UpdateSection(id, upd)
}

func (s *ProposalService) GetSections(proposalID int64) ([]store.Section, error) {
	return s.dbStore.GetSectionsByProposalID(proposalID)
}

// AssembledDocument is a point-in-time rendering of a proposal's completed
// sections.
type AssembledDocument struct {
	Title       string          `json:"title"`
	Sections    []store.Section `json:"sections"`
	GeneratedAt time.Time       `json:"generated_at"`
	WordCount   int             `json:"word_count"`
}

// AssembleDocument gathers the completed sections in order_index order and
// totals their whitespace-delimited word counts. Sections with no content
// contribute zero words but are still included.
func (s *ProposalService) AssembleDocument(proposalID int64) (*AssembledDocument, error) {
	proposal, err := s.dbStore.GetProposalByID(proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve proposal %d: %w", proposalID, err)
	}

	sections, err := s.dbStore.GetCompletedSectionsByProposalID(proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to load completed sections: %w", err)
	}

	wordCount := 0
	for _, sec := range sections {
		if sec.Content != nil {
			wordCount += len(strings.Fields(*sec.Content))
		}
	}

	return &AssembledDocument{
		Title:       proposal.Title,
		Sections:    sections,
		GeneratedAt: time.Now(),
		WordCount:   wordCount,
	}, nil
}

package core

import (
	"fmt"

	"grantwise.io/copilot/internal/store"
)

const (
	recentMessageLimit = 5  // conversation tail given to the responder
	recentMemoryLimit  = 10 // memory entries given to the responder
)

// ReplyContext is everything the responder may look at when building a reply.
type ReplyContext struct {
	ProposalTitle           string
	ProposalDescription     *string
	Status                  store.ProposalStatus
	Phase                   store.ProposalPhase
	OrganizationName        string
	OrganizationDescription *string
	RecentMessages          []store.ChatMessage // chronological, oldest first
	RecentMemory            []store.MemoryEntry // newest first
	DocumentCount           int
}

// ContextAssembler gathers the data a reply needs: the proposal joined to its
// organization, the conversation tail, recent memory, and the organization's
// document count. Read-only; it never writes.
type ContextAssembler struct {
	dbStore *store.SQLiteStore
}

func NewContextAssembler(db *store.SQLiteStore) *ContextAssembler {
	return &ContextAssembler{dbStore: db}
}

// Assemble fails with store.ErrNotFound when the proposal (joined to its
// organization) does not resolve. Missing messages or memory are not errors;
// they come back as empty slices.
func (a *ContextAssembler) Assemble(proposalID int64) (*ReplyContext, error) {
	overview, err := a.dbStore.GetProposalOverview(proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve proposal %d: %w", proposalID, err)
	}

	recent, err := a.dbStore.GetLastNMessagesByProposalID(proposalID, recentMessageLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load recent messages: %w", err)
	}
	// The store hands back newest-first; the responder contract is
	// chronological.
	for i, j := 0, len(recent)-1; i < j; i, j = i+1, j-1 {
		recent[i], recent[j] = recent[j], recent[i]
	}

	memory, err := a.dbStore.GetRecentMemoryByProposalID(proposalID, recentMemoryLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load memory entries: %w", err)
	}

	docCount, err := a.dbStore.CountDocumentsByOrganizationID(overview.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to count documents: %w", err)
	}

	return &ReplyContext{
		ProposalTitle:           overview.ProposalTitle,
		ProposalDescription:     overview.ProposalDescription,
		Status:                  overview.Status,
		Phase:                   overview.CurrentPhase,
		OrganizationName:        overview.OrganizationName,
		OrganizationDescription: overview.OrganizationDescription,
		RecentMessages:          recent,
		RecentMemory:            memory,
		DocumentCount:           docCount,
	}, nil
}

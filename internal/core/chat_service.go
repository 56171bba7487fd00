package core

import (
	"fmt"
	"log"

	"grantwise.io/copilot/internal/store"
)

// ChatService coordinates conversational turns: it persists the incoming
// message, assembles context, synthesizes the assistant reply, persists it,
// and returns it.
type ChatService struct {
	dbStore   *store.SQLiteStore
	assembler *ContextAssembler
	responder *Responder
}

func NewChatService(db *store.SQLiteStore, assembler *ContextAssembler, responder *Responder) *ChatService {
	return &ChatService{
		dbStore:   db,
		assembler: assembler,
		responder: responder,
	}
}

// CreateMessage persists a single chat message with no synthesis. The proposal
// must exist; a missing parent surfaces as store.ErrNotFound before any write.
func (s *ChatService) CreateMessage(proposalID int64, role store.MessageRole, content string, messageType store.MessageType) (*store.ChatMessage, error) {
	if _, err := s.dbStore.GetProposalByID(proposalID); err != nil {
		return nil, fmt.Errorf("failed to verify proposal: %w", err)
	}

	msg := &store.ChatMessage{
		ProposalID:  proposalID,
		Role:        role,
		Content:     content,
		MessageType: messageType,
	}
	if err := s.dbStore.CreateChatMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return msg, nil
}

// ProcessTurn runs one conversational turn and returns the assistant message.
// Each step is a hard precondition for the next:
//
//  1. Persist the caller's message. Failure aborts the turn with nothing
//     written.
//  2. Assemble context. Failure fails the turn; the caller's message remains.
//  3. Synthesize the reply (pure, cannot fail).
//  4. Persist the assistant message with the same message type. If this write
//     fails, the caller's message is deleted again as compensation so a failed
//     turn never leaves a silently unanswered message behind.
//
// A successful turn creates exactly two messages. Memory entries are never
// written here; CreateMemory is a separate, explicit operation.
func (s *ChatService) ProcessTurn(proposalID int64, role store.MessageRole, content string, messageType store.MessageType) (*store.ChatMessage, error) {
	userMsg, err := s.CreateMessage(proposalID, role, content, messageType)
	if err != nil {
		return nil, err
	}

	replyCtx, err := s.assembler.Assemble(proposalID)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble context: %w", err)
	}

	reply := s.responder.Synthesize(content, messageType, replyCtx)

	assistantMsg := &store.ChatMessage{
		ProposalID:  proposalID,
		Role:        store.RoleAssistant,
		Content:     reply,
		MessageType: messageType,
	}
	if err := s.dbStore.CreateChatMessage(assistantMsg); err != nil {
		if delErr := s.dbStore.DeleteChatMessage(userMsg.ID); delErr != nil {
			log.Printf("Orphaned user message %s after failed assistant write: %v", userMsg.ID, delErr)
		}
		return nil, fmt.Errorf("failed to store assistant message: %w", err)
	}

	return assistantMsg, nil
}

// GetMessages returns the proposal's conversation, oldest first.
func (s *ChatService) GetMessages(proposalID int64) ([]store.ChatMessage, error) {
	return s.dbStore.GetMessagesByProposalID(proposalID)
}

// CreateMemory records a durable note against the proposal. Entries are
// immutable and accumulate; the responder currently reacts only to their
// presence, not their content.
func (s *ChatService) CreateMemory(proposalID int64, memoryType store.MemoryType, content string, source *string) (*store.MemoryEntry, error) {
	if _, err := s.dbStore.GetProposalByID(proposalID); err != nil {
		return nil, fmt.Errorf("failed to verify proposal: %w", err)
	}

	entry := &store.MemoryEntry{
		ProposalID: proposalID,
		MemoryType: memoryType,
		Content:    content,
		Source:     source,
	}
	if err := s.dbStore.CreateMemoryEntry(entry); err != nil {
		return nil, fmt.Errorf("failed to store memory entry: %w", err)
	}
	return entry, nil
}

// GetMemory returns the proposal's memory entries, newest first.
func (s *ChatService) GetMemory(proposalID int64) ([]store.MemoryEntry, error) {
	return s.dbStore.GetMemoryByProposalID(proposalID)
}

package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ChatMessage methods. Messages are immutable once created.

func (s *SQLiteStore) CreateChatMessage(msg *ChatMessage) error {
	msg.ID = uuid.NewString() // Ensure ID is set
	msg.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO chat_messages (id, proposal_id, role, content, message_type, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare message insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(msg.ID, msg.ProposalID, msg.Role, msg.Content, msg.MessageType, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute message insert: %w", err)
	}
	return nil
}

// DeleteChatMessage exists solely so the orchestrator can compensate a failed
// assistant write; it is not exposed through the API.
func (s *SQLiteStore) DeleteChatMessage(id string) error {
	res, err := s.db.Exec("DELETE FROM chat_messages WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete message: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMessagesByProposalID returns the full conversation in chronological
// order, oldest first.
func (s *SQLiteStore) GetMessagesByProposalID(proposalID int64) ([]ChatMessage, error) {
	return s.queryMessages(
		"SELECT id, proposal_id, role, content, message_type, created_at FROM chat_messages WHERE proposal_id = ? ORDER BY created_at ASC", proposalID)
}

// GetLastNMessagesByProposalID returns up to n most recent messages, newest
// first. Callers wanting chronological order reverse the slice.
func (s *SQLiteStore) GetLastNMessagesByProposalID(proposalID int64, n int) ([]ChatMessage, error) {
	return s.queryMessages(
		"SELECT id, proposal_id, role, content, message_type, created_at FROM chat_messages WHERE proposal_id = ? ORDER BY created_at DESC LIMIT ?", proposalID, n)
}

func (s *SQLiteStore) queryMessages(query string, args ...interface{}) ([]ChatMessage, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var messages []ChatMessage
	for rows.Next() {
		var msg ChatMessage
		if err := rows.Scan(&msg.ID, &msg.ProposalID, &msg.Role, &msg.Content, &msg.MessageType, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MemoryEntry methods. Entries accumulate over a proposal's life and are
// immutable once created.

func (s *SQLiteStore) CreateMemoryEntry(entry *MemoryEntry) error {
	entry.ID = uuid.NewString()
	entry.CreatedAt = time.Now()

	stmt, err := s.db.Prepare("INSERT INTO memory_entries (id, proposal_id, memory_type, content, source, created_at) VALUES (?, ?, ?, ?, ?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare memory insert: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(entry.ID, entry.ProposalID, entry.MemoryType, entry.Content, entry.Source, entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to execute memory insert: %w", err)
	}
	return nil
}

// GetMemoryByProposalID returns all memory entries, newest first.
func (s *SQLiteStore) GetMemoryByProposalID(proposalID int64) ([]MemoryEntry, error) {
	return s.queryMemory(
		"SELECT id, proposal_id, memory_type, content, source, created_at FROM memory_entries WHERE proposal_id = ? ORDER BY created_at DESC", proposalID)
}

// GetRecentMemoryByProposalID returns up to n most recent entries, newest
// first.
func (s *SQLiteStore) GetRecentMemoryByProposalID(proposalID int64, n int) ([]MemoryEntry, error) {
	return s.queryMemory(
		"SELECT id, proposal_id, memory_type, content, source, created_at FROM memory_entries WHERE proposal_id = ? ORDER BY created_at DESC LIMIT ?", proposalID, n)
}

func (s *SQLiteStore) queryMemory(query string, args ...interface{}) ([]MemoryEntry, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memory entries: %w", err)
	}
	defer rows.Close()

	var entries []MemoryEntry
	for rows.Next() {
		var entry MemoryEntry
		var source sql.NullString
		if err := rows.Scan(&entry.ID, &entry.ProposalID, &entry.MemoryType, &entry.Content, &source, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan memory row: %w", err)
		}
		if source.Valid {
			entry.Source = &source.String
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

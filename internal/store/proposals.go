package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// Proposal methods

func (s *SQLiteStore) CreateProposal(userID, organizationID int64, title string, description *string) (*Proposal, error) {
	now := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO proposals (user_id, organization_id, title, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		userID, organizationID, title, description, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert proposal: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetProposalByID(id)
}

func (s *SQLiteStore) GetProposalByID(id int64) (*Proposal, error) {
	row := s.db.QueryRow(
		"SELECT id, user_id, organization_id, title, description, status, current_phase, created_at, updated_at FROM proposals WHERE id = ?", id)
	return scanProposal(row)
}

func (s *SQLiteStore) GetProposalsByUserID(userID int64) ([]Proposal, error) {
	rows, err := s.db.Query(
		"SELECT id, user_id, organization_id, title, description, status, current_phase, created_at, updated_at FROM proposals WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer rows.Close()

	var proposals []Proposal
	for rows.Next() {
		var p Proposal
		var description sql.NullString
		if err := rows.Scan(&p.ID, &p.UserID, &p.OrganizationID, &p.Title, &description, &p.Status, &p.CurrentPhase, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan proposal row: %w", err)
		}
		if description.Valid {
			p.Description = &description.String
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// UpdateProposal applies a partial update: only the non-nil fields of upd are
// written, and updated_at is always bumped.
func (s *SQLiteStore) UpdateProposal(id int64, upd ProposalUpdate) (*Proposal, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *upd.Description)
	}
	if upd.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *upd.Status)
	}
	if upd.CurrentPhase != nil {
		sets = append(sets, "current_phase = ?")
		args = append(args, *upd.CurrentPhase)
	}
	args = append(args, id)

	res, err := s.db.Exec("UPDATE proposals SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetProposalByID(id)
}

// GetProposalOverview resolves the proposal joined to its organization in a
// single read, for context assembly.
func (s *SQLiteStore) GetProposalOverview(proposalID int64) (*ProposalOverview, error) {
	var ov ProposalOverview
	var propDesc, orgDesc sql.NullString
	err := s.db.QueryRow(`
        SELECT p.id, p.organization_id, p.title, p.description, p.status, p.current_phase, o.name, o.description
        FROM proposals p
        INNER JOIN organizations o ON o.id = p.organization_id
        WHERE p.id = ?`, proposalID).
		Scan(&ov.ProposalID, &ov.OrganizationID, &ov.ProposalTitle, &propDesc, &ov.Status, &ov.CurrentPhase, &ov.OrganizationName, &orgDesc)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query proposal overview: %w", err)
	}
	if propDesc.Valid {
		ov.ProposalDescription = &propDesc.String
	}
	if orgDesc.Valid {
		ov.OrganizationDescription = &orgDesc.String
	}
	return &ov, nil
}

func scanProposal(row *sql.Row) (*Proposal, error) {
	var p Proposal
	var description sql.NullString
	err := row.Scan(&p.ID, &p.UserID, &p.OrganizationID, &p.Title, &description, &p.Status, &p.CurrentPhase, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query proposal: %w", err)
	}
	if description.Valid {
		p.Description = &description.String
	}
	return &p, nil
}

// Section methods

func (s *SQLiteStore) CreateSection(proposalID int64, title string, content *string, orderIndex int) (*Section, error) {
	now := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO proposal_sections (proposal_id, title, content, order_index, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
		proposalID, title, content, orderIndex, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert section: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSectionByID(id)
}

func (s *SQLiteStore) GetSectionByID(id int64) (*Section, error) {
	var sec Section
	var content sql.NullString
	err := s.db.QueryRow(
		"SELECT id, proposal_id, title, content, order_index, is_completed, created_at, updated_at FROM proposal_sections WHERE id = ?", id).
		Scan(&sec.ID, &sec.ProposalID, &sec.Title, &content, &sec.OrderIndex, &sec.IsCompleted, &sec.CreatedAt, &sec.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query section: %w", err)
	}
	if content.Valid {
		sec.Content = &content.String
	}
	return &sec, nil
}

// GetSectionsByProposalID returns all sections ordered by order_index
// ascending. Duplicate order indexes are tolerated.
func (s *SQLiteStore) GetSectionsByProposalID(proposalID int64) ([]Section, error) {
	return s.querySections(
		"SELECT id, proposal_id, title, content, order_index, is_completed, created_at, updated_at FROM proposal_sections WHERE proposal_id = ? ORDER BY order_index ASC", proposalID)
}

// GetCompletedSectionsByProposalID returns only sections with is_completed set,
// ordered by order_index ascending. Used for document assembly.
func (s *SQLiteStore) GetCompletedSectionsByProposalID(proposalID int64) ([]Section, error) {
	return s.querySections(
		"SELECT id, proposal_id, title, content, order_index, is_completed, created_at, updated_at FROM proposal_sections WHERE proposal_id = ? AND is_completed = TRUE ORDER BY order_index ASC", proposalID)
}

func (s *SQLiteStore) querySections(query string, args ...interface{}) ([]Section, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sections: %w", err)
	}
	defer rows.Close()

	var sections []Section
	for rows.Next() {
		var sec Section
		var content sql.NullString
		if err := rows.Scan(&sec.ID, &sec.ProposalID, &sec.Title, &content, &sec.OrderIndex, &sec.IsCompleted, &sec.CreatedAt, &sec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan section row: %w", err)
		}
		if content.Valid {
			sec.Content = &content.String
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// UpdateSection applies a partial update with the same contract as
// UpdateProposal: only non-nil fields are touched, updated_at always bumps.
func (s *SQLiteStore) UpdateSection(id int64, upd SectionUpdate) (*Section, error) {
	sets := []string{"updated_at = ?"}
	args := []interface{}{time.Now()}

	if upd.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *upd.Title)
	}
	if upd.Content != nil {
		sets = append(sets, "content = ?")
		args = append(args, *upd.Content)
	}
	if upd.OrderIndex != nil {
		sets = append(sets, "order_index = ?")
		args = append(args, *upd.OrderIndex)
	}
	if upd.IsCompleted != nil {
		sets = append(sets, "is_completed = ?")
		args = append(args, *upd.IsCompleted)
	}
	args = append(args, id)

	res, err := s.db.Exec("UPDATE proposal_sections SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update section: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return nil, ErrNotFound
	}
	return s.GetSectionByID(id)
}

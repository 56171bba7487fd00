package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Document methods. The core only creates documents in 'pending'; the later
// status transitions are written by the external ingestion process and may
// appear between any two reads.

func (s *SQLiteStore) CreateDocument(organizationID int64, filename, filePath string, fileType FileType, fileSize int64) (*Document, error) {
	now := time.Now()
	res, err := s.db.Exec(
		"INSERT INTO documents (organization_id, filename, file_path, file_type, file_size, upload_status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		organizationID, filename, filePath, fileType, fileSize, UploadStatusPending, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert document: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetDocumentByID(id)
}

func (s *SQLiteStore) GetDocumentByID(id int64) (*Document, error) {
	var doc Document
	err := s.db.QueryRow(
		"SELECT id, organization_id, filename, file_path, file_type, file_size, upload_status, created_at, updated_at FROM documents WHERE id = ?", id).
		Scan(&doc.ID, &doc.OrganizationID, &doc.Filename, &doc.FilePath, &doc.FileType, &doc.FileSize, &doc.UploadStatus, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return &doc, nil
}

func (s *SQLiteStore) GetDocumentsByOrganizationID(organizationID int64) ([]Document, error) {
	rows, err := s.db.Query(
		"SELECT id, organization_id, filename, file_path, file_type, file_size, upload_status, created_at, updated_at FROM documents WHERE organization_id = ? ORDER BY created_at DESC", organizationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.OrganizationID, &doc.Filename, &doc.FilePath, &doc.FileType, &doc.FileSize, &doc.UploadStatus, &doc.CreatedAt, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document row: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CountDocumentsByOrganizationID counts all documents for the organization
// regardless of upload status.
func (s *SQLiteStore) CountDocumentsByOrganizationID(organizationID int64) (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM documents WHERE organization_id = ?", organizationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count documents: %w", err)
	}
	return count, nil
}

// UpdateDocumentStatus is the hook the external ingestion process uses to move
// a document out of 'pending'. Not called by the core services.
func (s *SQLiteStore) UpdateDocumentStatus(id int64, status UploadStatus) error {
	res, err := s.db.Exec("UPDATE documents SET upload_status = ?, updated_at = ? WHERE id = ?", status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

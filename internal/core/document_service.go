package core

import (
	"fmt"

	"grantwise.io/copilot/internal/store"
)

// DocumentService registers uploaded documents against an organization. The
// byte-level upload and the ingestion that later moves a document out of
// 'pending' both live outside this service.
type DocumentService struct {
	dbStore *store.SQLiteStore
}

func NewDocumentService(db *store.SQLiteStore) *DocumentService {
	return &DocumentService{dbStore: db}
}

// Register creates a Document in 'pending' state. The storage path is a pure
// function of organization id and filename. Duplicate filenames within one
// organization are accepted: each registration yields its own row, the rows
// share a derived path, and the blob layer overwrites (last write wins).
func (s *DocumentService) Register(organizationID int64, filename string, fileType store.FileType, fileSize int64) (*store.Document, error) {
	if _, err := s.dbStore.GetOrganizationByID(organizationID); err != nil {
		return nil, fmt.Errorf("failed to verify organization %d: %w", organizationID, err)
	}

	filePath := StoragePath(organizationID, filename)
	return s.dbStore.CreateDocument(organizationID, filename, filePath, fileType, fileSize)
}

// StoragePath derives the stable storage location for a document. Deterministic
// by contract: same inputs, same path, no randomness.
func StoragePath(organizationID int64, filename string) string {
	return fmt.Sprintf("/uploads/org_%d/%s", organizationID, filename)
}

func (s *DocumentService) GetDocumentsByOrganization(organizationID int64) ([]store.Document, error) {
	return s.dbStore.GetDocumentsByOrganizationID(organizationID)
}

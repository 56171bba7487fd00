package core

import (
	"fmt"

	"grantwise.io/copilot/internal/store"
)

// AccountService covers the identity boundary: users and the organizations
// they own. Email and full name are immutable after creation.
type AccountService struct {
	dbStore *store.SQLiteStore
}

func NewAccountService(db *store.SQLiteStore) *AccountService {
	return &AccountService{dbStore: db}
}

func (s *AccountService) CreateUser(email, fullName, passwordHash string) (*store.User, error) {
	return s.dbStore.CreateUser(email, fullName, passwordHash)
}

func (s *AccountService) GetUserByEmail(email string) (*store.User, error) {
	return s.dbStore.GetUserByEmail(email)
}

// CreateOrganization verifies the owning user exists before the write.
func (s *AccountService) CreateOrganization(userID int64, name string, description *string) (*store.Organization, error) {
	if _, err := s.dbStore.GetUserByID(userID); err != nil {
		return nil, fmt.Errorf("failed to verify user %d: %w", userID, err)
	}
	return s.dbStore.CreateOrganization(userID, name, description)
}

func (s *AccountService) GetOrganizationsByUser(userID int64) ([]store.Organization, error) {
	return s.dbStore.GetOrganizationsByUserID(userID)
}

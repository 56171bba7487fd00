package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// ErrNotFound is returned when a referenced entity id does not resolve. Callers
// check it with errors.Is; the API layer maps it to a 404.
var ErrNotFound = errors.New("not found")

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	// Cascade deletes rely on foreign key enforcement being on for every
	// pooled connection.
	if !strings.Contains(dataSourceName, "?") {
		dataSourceName += "?_foreign_keys=on"
	}
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS users (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        email TEXT UNIQUE NOT NULL,
        full_name TEXT NOT NULL,
        password_hash TEXT NOT NULL,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );

    CREATE TABLE IF NOT EXISTS organizations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        name TEXT NOT NULL,
        description TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS documents (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        organization_id INTEGER NOT NULL,
        filename TEXT NOT NULL,
        file_path TEXT NOT NULL,
        file_type TEXT NOT NULL CHECK (file_type IN ('pdf', 'docx', 'doc')),
        file_size INTEGER NOT NULL,
        upload_status TEXT NOT NULL DEFAULT 'pending'
            CHECK (upload_status IN ('pending', 'processing', 'completed', 'failed')),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (organization_id) REFERENCES organizations (id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS proposals (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        user_id INTEGER NOT NULL,
        organization_id INTEGER NOT NULL,
        title TEXT NOT NULL,
        description TEXT,
        status TEXT NOT NULL DEFAULT 'planning'
            CHECK (status IN ('planning', 'drafting', 'completed', 'archived')),
        current_phase TEXT NOT NULL DEFAULT 'planning'
            CHECK (current_phase IN ('planning', 'drafting')),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE,
        FOREIGN KEY (organization_id) REFERENCES organizations (id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS proposal_sections (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        proposal_id INTEGER NOT NULL,
        title TEXT NOT NULL,
        content TEXT,
        order_index INTEGER NOT NULL,
        is_completed BOOLEAN NOT NULL DEFAULT FALSE,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (proposal_id) REFERENCES proposals (id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS chat_messages (
        id TEXT PRIMARY KEY, -- UUID
        proposal_id INTEGER NOT NULL,
        role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
        content TEXT NOT NULL,
        message_type TEXT NOT NULL DEFAULT 'chat'
            CHECK (message_type IN ('chat', 'planning', 'feedback')),
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (proposal_id) REFERENCES proposals (id) ON DELETE CASCADE
    );

    CREATE TABLE IF NOT EXISTS memory_entries (
        id TEXT PRIMARY KEY, -- UUID
        proposal_id INTEGER NOT NULL,
        memory_type TEXT NOT NULL
            CHECK (memory_type IN ('organization_info', 'user_feedback', 'document_insights', 'planning_notes')),
        content TEXT NOT NULL,
        source TEXT,
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
        FOREIGN KEY (proposal_id) REFERENCES proposals (id) ON DELETE CASCADE
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// User methods

func (s *SQLiteStore) CreateUser(email, fullName, passwordHash string) (*User, error) {
	now := time.Now()
	res, err := s.db.Exec("INSERT INTO users (email, full_name, password_hash, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		email, fullName, passwordHash, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetUserByID(id)
}

func (s *SQLiteStore) GetUserByID(id int64) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, email, full_name, password_hash, created_at, updated_at FROM users WHERE id = ?", id).
		Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &user, nil
}

func (s *SQLiteStore) GetUserByEmail(email string) (*User, error) {
	var user User
	err := s.db.QueryRow("SELECT id, email, full_name, password_hash, created_at, updated_at FROM users WHERE email = ?", email).
		Scan(&user.ID, &user.Email, &user.FullName, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return &user, nil
}

// Organization methods

func (s *SQLiteStore) CreateOrganization(userID int64, name string, description *string) (*Organization, error) {
	now := time.Now()
	res, err := s.db.Exec("INSERT INTO organizations (user_id, name, description, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		userID, name, description, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to insert organization: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetOrganizationByID(id)
}

func (s *SQLiteStore) GetOrganizationByID(id int64) (*Organization, error) {
	var org Organization
	var description sql.NullString
	err := s.db.QueryRow("SELECT id, user_id, name, description, created_at, updated_at FROM organizations WHERE id = ?", id).
		Scan(&org.ID, &org.UserID, &org.Name, &description, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to query organization: %w", err)
	}
	if description.Valid {
		org.Description = &description.String
	}
	return &org, nil
}

func (s *SQLiteStore) GetOrganizationsByUserID(userID int64) ([]Organization, error) {
	rows, err := s.db.Query("SELECT id, user_id, name, description, created_at, updated_at FROM organizations WHERE user_id = ? ORDER BY created_at DESC", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query organizations: %w", err)
	}
	defer rows.Close()

	var orgs []Organization
	for rows.Next() {
		var org Organization
		var description sql.NullString
		if err := rows.Scan(&org.ID, &org.UserID, &org.Name, &description, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization row: %w", err)
		}
		if description.Valid {
			org.Description = &description.String
		}
		orgs = append(orgs, org)
	}
	return orgs, rows.Err()
}

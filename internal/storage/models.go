package storage

import "time"

// UserRecord represents an account in the database.
type UserRecord struct {
	ID           string // UUID
	Username     string
	Email        string // Stored lowercased, unique
	PasswordHash string // bcrypt hash, never leaves the server
	CreatedAt    time.Time
}

// NoteRecord represents a note row. Tags are stored as a JSON array.
type NoteRecord struct {
	ID        string // UUID
	UserID    string // Foreign key to users.id
	Title     string
	Content   string
	Code      string
	Language  string
	Image     string // URL
	Category  string // Empty means uncategorized
	Tags      []string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

package db

import "github.com/jackc/pgx/v5/pgtype"

type BoardRole string

const (
	BoardRoleOwner  BoardRole = "owner"
	BoardRoleEditor BoardRole = "editor"
	BoardRoleViewer BoardRole = "viewer"
)

type User struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
	CreatedAt    pgtype.Timestamptz
}

type Board struct {
	ID         string
	Name       string
	OwnerID    string
	Width      int32
	Height     int32
	Background string
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

type BoardMember struct {
	BoardID   string
	UserID    string
	Role      BoardRole
	CreatedAt pgtype.Timestamptz
}

type Snapshot struct {
	ID        string
	BoardID   string
	Version   int32
	ServerSeq int64
	Document  []byte
	CreatedAt pgtype.Timestamptz
}

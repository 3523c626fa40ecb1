package db

import "context"

// --- users ---

type CreateUserParams struct {
	ID           string
	Email        string
	PasswordHash string
	DisplayName  string
}

const createUser = `
INSERT INTO users (id, email, password_hash, display_name)
VALUES ($1, $2, $3, $4)
RETURNING id, email, password_hash, display_name, created_at
`

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.ID, arg.Email, arg.PasswordHash, arg.DisplayName)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByEmail = `
SELECT id, email, password_hash, display_name, created_at
FROM users WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	return u, err
}

const getUserByID = `
SELECT id, email, password_hash, display_name, created_at
FROM users WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.DisplayName, &u.CreatedAt)
	return u, err
}

// --- boards ---

type CreateBoardParams struct {
	ID      string
	Name    string
	OwnerID string
}

const createBoard = `
INSERT INTO boards (id, name, owner_id)
VALUES ($1, $2, $3)
RETURNING id, name, owner_id, width, height, background, created_at, updated_at
`

func (q *Queries) CreateBoard(ctx context.Context, arg CreateBoardParams) (Board, error) {
	row := q.db.QueryRow(ctx, createBoard, arg.ID, arg.Name, arg.OwnerID)
	return scanBoard(row)
}

const getBoard = `
SELECT id, name, owner_id, width, height, background, created_at, updated_at
FROM boards WHERE id = $1
`

func (q *Queries) GetBoard(ctx context.Context, id string) (Board, error) {
	return scanBoard(q.db.QueryRow(ctx, getBoard, id))
}

const listBoardsForUser = `
SELECT b.id, b.name, b.owner_id, b.width, b.height, b.background, b.created_at, b.updated_at
FROM boards b
JOIN board_members m ON m.board_id = b.id
WHERE m.user_id = $1
ORDER BY b.updated_at DESC
`

func (q *Queries) ListBoardsForUser(ctx context.Context, userID string) ([]Board, error) {
	rows, err := q.db.Query(ctx, listBoardsForUser, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var boards []Board
	for rows.Next() {
		b, err := scanBoard(rows)
		if err != nil {
			return nil, err
		}
		boards = append(boards, b)
	}
	return boards, rows.Err()
}

const renameBoard = `
UPDATE boards SET name = $2, updated_at = now() WHERE id = $1
`

func (q *Queries) RenameBoard(ctx context.Context, id, name string) error {
	_, err := q.db.Exec(ctx, renameBoard, id, name)
	return err
}

const deleteBoard = `
DELETE FROM boards WHERE id = $1
`

func (q *Queries) DeleteBoard(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, deleteBoard, id)
	return err
}

// --- board members ---

type AddBoardMemberParams struct {
	BoardID string
	UserID  string
	Role    BoardRole
}

const addBoardMember = `
INSERT INTO board_members (board_id, user_id, role)
VALUES ($1, $2, $3)
ON CONFLICT (board_id, user_id) DO UPDATE SET role = EXCLUDED.role
`

func (q *Queries) AddBoardMember(ctx context.Context, arg AddBoardMemberParams) error {
	_, err := q.db.Exec(ctx, addBoardMember, arg.BoardID, arg.UserID, arg.Role)
	return err
}

type GetBoardMemberParams struct {
	BoardID string
	UserID  string
}

const getBoardMember = `
SELECT board_id, user_id, role, created_at
FROM board_members WHERE board_id = $1 AND user_id = $2
`

func (q *Queries) GetBoardMember(ctx context.Context, arg GetBoardMemberParams) (BoardMember, error) {
	row := q.db.QueryRow(ctx, getBoardMember, arg.BoardID, arg.UserID)
	var m BoardMember
	err := row.Scan(&m.BoardID, &m.UserID, &m.Role, &m.CreatedAt)
	return m, err
}

type ListBoardMembersRow struct {
	UserID      string
	Role        BoardRole
	DisplayName string
	Email       string
}

const listBoardMembers = `
SELECT m.user_id, m.role, u.display_name, u.email
FROM board_members m
JOIN users u ON u.id = m.user_id
WHERE m.board_id = $1
ORDER BY m.created_at
`

func (q *Queries) ListBoardMembers(ctx context.Context, boardID string) ([]ListBoardMembersRow, error) {
	rows, err := q.db.Query(ctx, listBoardMembers, boardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []ListBoardMembersRow
	for rows.Next() {
		var m ListBoardMembersRow
		if err := rows.Scan(&m.UserID, &m.Role, &m.DisplayName, &m.Email); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type RemoveBoardMemberParams struct {
	BoardID string
	UserID  string
}

const removeBoardMember = `
DELETE FROM board_members WHERE board_id = $1 AND user_id = $2
`

func (q *Queries) RemoveBoardMember(ctx context.Context, arg RemoveBoardMemberParams) error {
	_, err := q.db.Exec(ctx, removeBoardMember, arg.BoardID, arg.UserID)
	return err
}

// --- snapshots ---

type CreateSnapshotParams struct {
	ID        string
	BoardID   string
	Version   int32
	ServerSeq int64
	Document  []byte
}

const createSnapshot = `
INSERT INTO snapshots (id, board_id, version, server_seq, document)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, board_id, version, server_seq, document, created_at
`

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	row := q.db.QueryRow(ctx, createSnapshot, arg.ID, arg.BoardID, arg.Version, arg.ServerSeq, arg.Document)
	var s Snapshot
	err := row.Scan(&s.ID, &s.BoardID, &s.Version, &s.ServerSeq, &s.Document, &s.CreatedAt)
	return s, err
}

const getLatestSnapshot = `
SELECT id, board_id, version, server_seq, document, created_at
FROM snapshots WHERE board_id = $1
ORDER BY version DESC LIMIT 1
`

func (q *Queries) GetLatestSnapshot(ctx context.Context, boardID string) (Snapshot, error) {
	row := q.db.QueryRow(ctx, getLatestSnapshot, boardID)
	var s Snapshot
	err := row.Scan(&s.ID, &s.BoardID, &s.Version, &s.ServerSeq, &s.Document, &s.CreatedAt)
	return s, err
}

func scanBoard(row interface{ Scan(dest ...interface{}) error }) (Board, error) {
	var b Board
	err := row.Scan(&b.ID, &b.Name, &b.OwnerID, &b.Width, &b.Height, &b.Background, &b.CreatedAt, &b.UpdatedAt)
	return b, err
}

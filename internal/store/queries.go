package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by a pool, a connection and a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Queries runs the application statements on db.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns queries bound to tx.
func (q *Queries) WithTx(tx pgx.Tx) *Queries {
	return &Queries{db: tx}
}

type ProjectRole string

const (
	ProjectRoleOwner  ProjectRole = "owner"
	ProjectRoleEditor ProjectRole = "editor"
)

type User struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
	CreatedAt   time.Time
}

type Project struct {
	ID        string
	Name      string
	OwnerID   string
	Width     int32
	Height    int32
	CreatedAt time.Time
	UpdatedAt time.Time
}

type ProjectMember struct {
	ProjectID   string
	UserID      string
	Role        ProjectRole
	DisplayName string
	Email       string
}

type Snapshot struct {
	ID        string
	ProjectID string
	Version   int32
	Document  json.RawMessage
	CreatedAt time.Time
}

// --- users ---

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (id, email, password, display_name)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, password, display_name, created_at`,
		arg.ID, arg.Email, arg.Password, arg.DisplayName)
	return scanUser(row)
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, email, password, display_name, created_at
		FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.DisplayName, &u.CreatedAt)
	return u, err
}

// --- projects ---

type CreateProjectParams struct {
	ID      string
	Name    string
	OwnerID string
	Width   int32
	Height  int32
}

const projectColumns = `id, name, owner_id, width, height, created_at, updated_at`

func (q *Queries) CreateProject(ctx context.Context, arg CreateProjectParams) (Project, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO projects (id, name, owner_id, width, height)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+projectColumns,
		arg.ID, arg.Name, arg.OwnerID, arg.Width, arg.Height)
	return scanProject(row)
}

func (q *Queries) GetProject(ctx context.Context, id string) (Project, error) {
	row := q.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanProject(row)
}

func (q *Queries) ListProjectsForUser(ctx context.Context, userID string) ([]Project, error) {
	rows, err := q.db.Query(ctx, `
		SELECT p.id, p.name, p.owner_id, p.width, p.height, p.created_at, p.updated_at
		FROM projects p
		JOIN project_members m ON m.project_id = p.id
		WHERE m.user_id = $1
		ORDER BY p.updated_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Project, error) {
		return scanProject(r)
	})
}

// TouchProject bumps updated_at.
func (q *Queries) TouchProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, `UPDATE projects SET updated_at = now() WHERE id = $1`, id)
	return err
}

func (q *Queries) DeleteProject(ctx context.Context, id string) error {
	_, err := q.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	err := row.Scan(&p.ID, &p.Name, &p.OwnerID, &p.Width, &p.Height, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// --- members ---

type AddProjectMemberParams struct {
	ProjectID string
	UserID    string
	Role      ProjectRole
}

func (q *Queries) AddProjectMember(ctx context.Context, arg AddProjectMemberParams) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO project_members (project_id, user_id, role)
		VALUES ($1, $2, $3)
		ON CONFLICT (project_id, user_id) DO NOTHING`,
		arg.ProjectID, arg.UserID, string(arg.Role))
	return err
}

type GetProjectMemberParams struct {
	ProjectID string
	UserID    string
}

func (q *Queries) GetProjectMember(ctx context.Context, arg GetProjectMemberParams) (ProjectMember, error) {
	row := q.db.QueryRow(ctx, `
		SELECT m.project_id, m.user_id, m.role, u.display_name, u.email
		FROM project_members m JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1 AND m.user_id = $2`, arg.ProjectID, arg.UserID)
	return scanMember(row)
}

func (q *Queries) ListProjectMembers(ctx context.Context, projectID string) ([]ProjectMember, error) {
	rows, err := q.db.Query(ctx, `
		SELECT m.project_id, m.user_id, m.role, u.display_name, u.email
		FROM project_members m JOIN users u ON u.id = m.user_id
		WHERE m.project_id = $1
		ORDER BY u.display_name`, projectID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (ProjectMember, error) {
		return scanMember(r)
	})
}

type RemoveProjectMemberParams struct {
	ProjectID string
	UserID    string
}

func (q *Queries) RemoveProjectMember(ctx context.Context, arg RemoveProjectMemberParams) error {
	_, err := q.db.Exec(ctx, `DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`,
		arg.ProjectID, arg.UserID)
	return err
}

func scanMember(row pgx.Row) (ProjectMember, error) {
	var m ProjectMember
	var role string
	err := row.Scan(&m.ProjectID, &m.UserID, &role, &m.DisplayName, &m.Email)
	m.Role = ProjectRole(role)
	return m, err
}

// --- snapshots ---

type CreateSnapshotParams struct {
	ID        string
	ProjectID string
	Version   int32
	Document  json.RawMessage
}

func (q *Queries) CreateSnapshot(ctx context.Context, arg CreateSnapshotParams) (Snapshot, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO snapshots (id, project_id, version, document)
		VALUES ($1, $2, $3, $4)
		RETURNING id, project_id, version, document, created_at`,
		arg.ID, arg.ProjectID, arg.Version, []byte(arg.Document))
	return scanSnapshot(row)
}

func (q *Queries) GetLatestSnapshot(ctx context.Context, projectID string) (Snapshot, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, project_id, version, document, created_at
		FROM snapshots WHERE project_id = $1
		ORDER BY version DESC LIMIT 1`, projectID)
	return scanSnapshot(row)
}

func scanSnapshot(row pgx.Row) (Snapshot, error) {
	var s Snapshot
	var doc []byte
	err := row.Scan(&s.ID, &s.ProjectID, &s.Version, &doc, &s.CreatedAt)
	s.Document = doc
	return s, err
}

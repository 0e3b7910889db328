package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/inamate/inamate/canvas-go/internal/document"
	"github.com/inamate/inamate/canvas-go/internal/store"
	"github.com/inamate/inamate/canvas-go/internal/typeid"
)

var (
	ErrNotFound          = errors.New("project not found")
	ErrForbidden         = errors.New("forbidden")
	ErrNotMember         = errors.New("not a project member")
	ErrUserNotFound      = errors.New("user not found")
	ErrCannotRemoveOwner = errors.New("cannot remove project owner")
)

const (
	DefaultWidth  = 1280
	DefaultHeight = 720
)

type Service struct {
	queries *store.Queries
}

func NewService(queries *store.Queries) *Service {
	return &Service{queries: queries}
}

type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	OwnerID   string `json:"ownerId"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

type Member struct {
	UserID      string `json:"userId"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

// Create stores a project owned by ownerID and seeds its first snapshot
// with an empty canvas document, or the sample scene when sample is set.
func (s *Service) Create(ctx context.Context, name, ownerID string, width, height int, sample bool) (*Project, error) {
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}
	projectID := typeid.NewProjectID()

	dbProj, err := s.queries.CreateProject(ctx, store.CreateProjectParams{
		ID:      projectID,
		Name:    name,
		OwnerID: ownerID,
		Width:   int32(width),
		Height:  int32(height),
	})
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	err = s.queries.AddProjectMember(ctx, store.AddProjectMemberParams{
		ProjectID: projectID,
		UserID:    ownerID,
		Role:      store.ProjectRoleOwner,
	})
	if err != nil {
		return nil, fmt.Errorf("add owner as member: %w", err)
	}

	doc := document.NewEmpty(width, height)
	if sample {
		doc = document.Sample()
		doc.Width, doc.Height = width, height
	}
	if _, err := s.SaveSnapshot(ctx, projectID, doc); err != nil {
		return nil, fmt.Errorf("create initial snapshot: %w", err)
	}

	return toProject(dbProj), nil
}

func (s *Service) Get(ctx context.Context, projectID, userID string) (*Project, error) {
	if err := s.CheckMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}
	dbProj, err := s.project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return toProject(dbProj), nil
}

func (s *Service) List(ctx context.Context, userID string) ([]Project, error) {
	dbProjects, err := s.queries.ListProjectsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	projects := make([]Project, len(dbProjects))
	for i, p := range dbProjects {
		projects[i] = *toProject(p)
	}
	return projects, nil
}

func (s *Service) Delete(ctx context.Context, projectID, userID string) error {
	if _, err := s.ownedProject(ctx, projectID, userID); err != nil {
		return err
	}
	return s.queries.DeleteProject(ctx, projectID)
}

func (s *Service) InviteByEmail(ctx context.Context, projectID, ownerID, inviteeEmail string) error {
	if _, err := s.ownedProject(ctx, projectID, ownerID); err != nil {
		return err
	}

	invitee, err := s.queries.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("find user: %w", err)
	}

	return s.queries.AddProjectMember(ctx, store.AddProjectMemberParams{
		ProjectID: projectID,
		UserID:    invitee.ID,
		Role:      store.ProjectRoleEditor,
	})
}

func (s *Service) ListMembers(ctx context.Context, projectID, userID string) ([]Member, error) {
	if err := s.CheckMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}

	dbMembers, err := s.queries.ListProjectMembers(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}

	members := make([]Member, len(dbMembers))
	for i, m := range dbMembers {
		members[i] = Member{
			UserID:      m.UserID,
			Role:        string(m.Role),
			DisplayName: m.DisplayName,
			Email:       m.Email,
		}
	}
	return members, nil
}

func (s *Service) RemoveMember(ctx context.Context, projectID, ownerID, targetUserID string) error {
	if _, err := s.ownedProject(ctx, projectID, ownerID); err != nil {
		return err
	}
	if targetUserID == ownerID {
		return ErrCannotRemoveOwner
	}
	return s.queries.RemoveProjectMember(ctx, store.RemoveProjectMemberParams{
		ProjectID: projectID,
		UserID:    targetUserID,
	})
}

// GetLatestSnapshot returns the newest document of a project the user
// belongs to.
func (s *Service) GetLatestSnapshot(ctx context.Context, projectID, userID string) (json.RawMessage, error) {
	if err := s.CheckMembership(ctx, projectID, userID); err != nil {
		return nil, err
	}
	return s.LoadDocument(ctx, projectID)
}

// LoadDocument returns the newest document of a project without any
// membership check. The collaboration hub uses it after authenticating
// the connection.
func (s *Service) LoadDocument(ctx context.Context, projectID string) (json.RawMessage, error) {
	snap, err := s.queries.GetLatestSnapshot(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get snapshot: %w", err)
	}
	return snap.Document, nil
}

// SaveSnapshot stores doc as the next version of the project and returns
// that version.
func (s *Service) SaveSnapshot(ctx context.Context, projectID string, doc *document.Document) (int32, error) {
	data, err := doc.Marshal()
	if err != nil {
		return 0, fmt.Errorf("marshal document: %w", err)
	}

	version := int32(1)
	current, err := s.queries.GetLatestSnapshot(ctx, projectID)
	switch {
	case err == nil:
		version = current.Version + 1
	case !errors.Is(err, store.ErrNoRows):
		return 0, fmt.Errorf("get snapshot: %w", err)
	}

	_, err = s.queries.CreateSnapshot(ctx, store.CreateSnapshotParams{
		ID:        typeid.NewSnapshotID(),
		ProjectID: projectID,
		Version:   version,
		Document:  data,
	})
	if err != nil {
		return 0, fmt.Errorf("create snapshot: %w", err)
	}
	if err := s.queries.TouchProject(ctx, projectID); err != nil {
		return 0, fmt.Errorf("touch project: %w", err)
	}
	return version, nil
}

// CheckMembership returns ErrNotMember unless userID belongs to projectID.
func (s *Service) CheckMembership(ctx context.Context, projectID, userID string) error {
	_, err := s.queries.GetProjectMember(ctx, store.GetProjectMemberParams{
		ProjectID: projectID,
		UserID:    userID,
	})
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return ErrNotMember
		}
		return fmt.Errorf("check membership: %w", err)
	}
	return nil
}

func (s *Service) project(ctx context.Context, projectID string) (store.Project, error) {
	p, err := s.queries.GetProject(ctx, projectID)
	if err != nil {
		if errors.Is(err, store.ErrNoRows) {
			return p, ErrNotFound
		}
		return p, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (s *Service) ownedProject(ctx context.Context, projectID, userID string) (store.Project, error) {
	p, err := s.project(ctx, projectID)
	if err != nil {
		return p, err
	}
	if p.OwnerID != userID {
		return p, ErrForbidden
	}
	return p, nil
}

func toProject(p store.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		OwnerID:   p.OwnerID,
		Width:     int(p.Width),
		Height:    int(p.Height),
		CreatedAt: p.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: p.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

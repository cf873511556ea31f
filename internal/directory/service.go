package directory

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/apperr"
	"TaskFlow/internal/auth"
	"TaskFlow/internal/project"
	"TaskFlow/internal/store"
)

var (
	ErrDepartmentExists  = apperr.Conflict("Department name already exists")
	ErrClientHasProjects = apperr.Conflict("Client still has projects")
)

type directoryStore interface {
	CreateDepartment(ctx context.Context, d *Department) error
	FindDepartment(ctx context.Context, id primitive.ObjectID) (*Department, error)
	ReplaceDepartment(ctx context.Context, d *Department) error
	DeleteDepartment(ctx context.Context, id primitive.ObjectID) error
	ListDepartments(ctx context.Context, query string, lo store.ListOptions) (*store.Page[Department], error)

	CreateClient(ctx context.Context, c *Client) error
	FindClient(ctx context.Context, id primitive.ObjectID) (*Client, error)
	ReplaceClient(ctx context.Context, c *Client) error
	DeleteClient(ctx context.Context, id primitive.ObjectID) error
	ListClients(ctx context.Context, f ClientFilter, lo store.ListOptions) (*store.Page[Client], error)

	CreateContact(ctx context.Context, c *Contact) error
	FindContact(ctx context.Context, id primitive.ObjectID) (*Contact, error)
	ReplaceContact(ctx context.Context, c *Contact) error
	DeleteContact(ctx context.Context, id primitive.ObjectID) error
	ListContacts(ctx context.Context, f ContactFilter, lo store.ListOptions) (*store.Page[Contact], error)
	ContactsForClient(ctx context.Context, clientID primitive.ObjectID) ([]*Contact, error)
	DetachContacts(ctx context.Context, clientID primitive.ObjectID) (int64, error)
}

type clientProjects interface {
	ListByClient(ctx context.Context, clientID primitive.ObjectID) ([]*project.Project, error)
	CountByClient(ctx context.Context, clientID primitive.ObjectID) (int64, error)
}

type departmentMembers interface {
	UnsetDepartment(ctx context.Context, departmentID primitive.ObjectID) (int64, error)
}

type DirectoryService struct {
	repo     directoryStore
	projects clientProjects
	users    departmentMembers
	logger   *zap.Logger
	now      func() time.Time
}

func NewDirectoryService(repo *DirectoryRepository, projects *project.ProjectRepository, users *auth.UserRepository, logger *zap.Logger) *DirectoryService {
	return newDirectoryService(repo, projects, users, logger)
}

func newDirectoryService(repo directoryStore, projects clientProjects, users departmentMembers, logger *zap.Logger) *DirectoryService {
	return &DirectoryService{repo: repo, projects: projects, users: users, logger: logger.Named("directory"), now: time.Now}
}

func (s *DirectoryService) CreateDepartment(ctx context.Context, req DepartmentRequest) (*Department, error) {
	head, err := store.ParseOptionalID(req.Head)
	if err != nil {
		return nil, err
	}
	now := s.now()
	d := &Department{
		ID:          primitive.NewObjectID(),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Head:        store.IDPtr(head),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateDepartment(ctx, d); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDepartmentExists
		}
		return nil, err
	}
	return d, nil
}

func (s *DirectoryService) GetDepartment(ctx context.Context, id primitive.ObjectID) (*Department, error) {
	return s.repo.FindDepartment(ctx, id)
}

func (s *DirectoryService) ListDepartments(ctx context.Context, query string, lo store.ListOptions) (*store.Page[Department], error) {
	return s.repo.ListDepartments(ctx, query, lo)
}

func (s *DirectoryService) UpdateDepartment(ctx context.Context, id primitive.ObjectID, req DepartmentRequest) (*Department, error) {
	d, err := s.repo.FindDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	head, err := store.ParseOptionalID(req.Head)
	if err != nil {
		return nil, err
	}
	d.Name = strings.TrimSpace(req.Name)
	d.Description = req.Description
	d.Head = store.IDPtr(head)
	d.UpdatedAt = s.now()
	if err := s.repo.ReplaceDepartment(ctx, d); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDepartmentExists
		}
		return nil, err
	}
	return d, nil
}

// DeleteDepartment removes the department and detaches its users.
func (s *DirectoryService) DeleteDepartment(ctx context.Context, id primitive.ObjectID) error {
	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return err
	}
	n, err := s.users.UnsetDepartment(ctx, id)
	if err != nil {
		return err
	}
	s.logger.Info("department deleted", zap.String("department_id", id.Hex()), zap.Int64("users_detached", n))
	return nil
}

func (s *DirectoryService) CreateClient(ctx context.Context, req ClientRequest) (*Client, error) {
	now := s.now()
	c := &Client{ID: primitive.NewObjectID(), CreatedAt: now}
	applyClient(c, req, now)
	if err := s.repo.CreateClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func applyClient(c *Client, req ClientRequest, now time.Time) {
	c.Name = strings.TrimSpace(req.Name)
	c.Company = req.Company
	c.Email = strings.ToLower(strings.TrimSpace(req.Email))
	c.Phone = req.Phone
	c.Address = req.Address
	c.Industry = req.Industry
	c.Status = req.Status
	if c.Status == "" {
		c.Status = ClientActive
	}
	c.Notes = req.Notes
	c.UpdatedAt = now
}

// GetClient returns the client together with its projects and contacts.
func (s *DirectoryService) GetClient(ctx context.Context, id primitive.ObjectID) (*ClientDetail, error) {
	c, err := s.repo.FindClient(ctx, id)
	if err != nil {
		return nil, err
	}
	projects, err := s.projects.ListByClient(ctx, id)
	if err != nil {
		return nil, err
	}
	contacts, err := s.repo.ContactsForClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ClientDetail{Client: c, Projects: projects, Contacts: contacts}, nil
}

func (s *DirectoryService) ListClients(ctx context.Context, f ClientFilter, lo store.ListOptions) (*store.Page[Client], error) {
	return s.repo.ListClients(ctx, f, lo)
}

func (s *DirectoryService) UpdateClient(ctx context.Context, id primitive.ObjectID, req ClientRequest) (*Client, error) {
	c, err := s.repo.FindClient(ctx, id)
	if err != nil {
		return nil, err
	}
	applyClient(c, req, s.now())
	if err := s.repo.ReplaceClient(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteClient refuses to delete a client that still owns projects.
func (s *DirectoryService) DeleteClient(ctx context.Context, id primitive.ObjectID) error {
	n, err := s.projects.CountByClient(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrClientHasProjects
	}
	if err := s.repo.DeleteClient(ctx, id); err != nil {
		return err
	}
	if _, err := s.repo.DetachContacts(ctx, id); err != nil {
		return err
	}
	s.logger.Info("client deleted", zap.String("client_id", id.Hex()))
	return nil
}

func (s *DirectoryService) CreateContact(ctx context.Context, req ContactRequest) (*Contact, error) {
	now := s.now()
	c := &Contact{ID: primitive.NewObjectID(), CreatedAt: now}
	if err := s.applyContact(ctx, c, req, now); err != nil {
		return nil, err
	}
	if err := s.repo.CreateContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DirectoryService) applyContact(ctx context.Context, c *Contact, req ContactRequest, now time.Time) error {
	client, err := store.ParseOptionalID(req.Client)
	if err != nil {
		return err
	}
	if !client.IsZero() {
		if _, err := s.repo.FindClient(ctx, client); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.NotFound("Client not found")
			}
			return err
		}
	}
	c.Name = strings.TrimSpace(req.Name)
	c.Email = strings.ToLower(strings.TrimSpace(req.Email))
	c.Phone = req.Phone
	c.Position = req.Position
	c.Company = req.Company
	c.Client = store.IDPtr(client)
	c.Notes = req.Notes
	c.UpdatedAt = now
	return nil
}

func (s *DirectoryService) GetContact(ctx context.Context, id primitive.ObjectID) (*Contact, error) {
	return s.repo.FindContact(ctx, id)
}

func (s *DirectoryService) ListContacts(ctx context.Context, f ContactFilter, lo store.ListOptions) (*store.Page[Contact], error) {
	return s.repo.ListContacts(ctx, f, lo)
}

func (s *DirectoryService) UpdateContact(ctx context.Context, id primitive.ObjectID, req ContactRequest) (*Contact, error) {
	c, err := s.repo.FindContact(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.applyContact(ctx, c, req, s.now()); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceContact(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *DirectoryService) DeleteContact(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.DeleteContact(ctx, id)
}

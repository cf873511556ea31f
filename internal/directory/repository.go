package directory

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"TaskFlow/internal/store"
)

// DirectoryRepository stores departments, clients and contacts.
type DirectoryRepository struct {
	departments *store.Collection[Department]
	clients     *store.Collection[Client]
	contacts    *store.Collection[Contact]
}

func NewDirectoryRepository(db *mongo.Database) *DirectoryRepository {
	return &DirectoryRepository{
		departments: store.NewCollection[Department](db, "departments"),
		clients:     store.NewCollection[Client](db, "clients"),
		contacts:    store.NewCollection[Contact](db, "contacts"),
	}
}

func (r *DirectoryRepository) CreateDepartment(ctx context.Context, d *Department) error {
	return r.departments.Insert(ctx, d)
}

func (r *DirectoryRepository) FindDepartment(ctx context.Context, id primitive.ObjectID) (*Department, error) {
	return r.departments.FindByID(ctx, id)
}

func (r *DirectoryRepository) ReplaceDepartment(ctx context.Context, d *Department) error {
	return r.departments.Replace(ctx, d.ID, d)
}

func (r *DirectoryRepository) DeleteDepartment(ctx context.Context, id primitive.ObjectID) error {
	return r.departments.DeleteByID(ctx, id)
}

func (r *DirectoryRepository) ListDepartments(ctx context.Context, query string, lo store.ListOptions) (*store.Page[Department], error) {
	filter := store.NewFilter().Search(query, "name", "description")
	return r.departments.List(ctx, filter.BSON(), lo)
}

func (r *DirectoryRepository) CreateClient(ctx context.Context, c *Client) error {
	return r.clients.Insert(ctx, c)
}

func (r *DirectoryRepository) FindClient(ctx context.Context, id primitive.ObjectID) (*Client, error) {
	return r.clients.FindByID(ctx, id)
}

func (r *DirectoryRepository) ReplaceClient(ctx context.Context, c *Client) error {
	return r.clients.Replace(ctx, c.ID, c)
}

func (r *DirectoryRepository) DeleteClient(ctx context.Context, id primitive.ObjectID) error {
	return r.clients.DeleteByID(ctx, id)
}

func (r *DirectoryRepository) ListClients(ctx context.Context, f ClientFilter, lo store.ListOptions) (*store.Page[Client], error) {
	filter := store.NewFilter().
		Eq("status", f.Status).
		Search(f.Query, "name", "company", "email", "industry")
	return r.clients.List(ctx, filter.BSON(), lo)
}

func (r *DirectoryRepository) CountClients(ctx context.Context, match bson.M) (int64, error) {
	return r.clients.Count(ctx, match)
}

func (r *DirectoryRepository) CreateContact(ctx context.Context, c *Contact) error {
	return r.contacts.Insert(ctx, c)
}

func (r *DirectoryRepository) FindContact(ctx context.Context, id primitive.ObjectID) (*Contact, error) {
	return r.contacts.FindByID(ctx, id)
}

func (r *DirectoryRepository) ReplaceContact(ctx context.Context, c *Contact) error {
	return r.contacts.Replace(ctx, c.ID, c)
}

func (r *DirectoryRepository) DeleteContact(ctx context.Context, id primitive.ObjectID) error {
	return r.contacts.DeleteByID(ctx, id)
}

func (r *DirectoryRepository) ListContacts(ctx context.Context, f ContactFilter, lo store.ListOptions) (*store.Page[Contact], error) {
	filter := store.NewFilter().
		ID("client", f.Client).
		Search(f.Query, "name", "email", "company", "position")
	return r.contacts.List(ctx, filter.BSON(), lo)
}

func (r *DirectoryRepository) ContactsForClient(ctx context.Context, clientID primitive.ObjectID) ([]*Contact, error) {
	return r.contacts.FindAll(ctx, bson.M{"client": clientID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

// DetachContacts clears the client reference of a deleted client's contacts.
func (r *DirectoryRepository) DetachContacts(ctx context.Context, clientID primitive.ObjectID) (int64, error) {
	return r.contacts.UpdateMany(ctx,
		bson.M{"client": clientID},
		bson.M{"$unset": bson.M{"client": ""}})
}

package report

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"TaskFlow/internal/store"
)

type ReportRepository struct {
	reports *store.Collection[Report]
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{reports: store.NewCollection[Report](db, "reports")}
}

func (r *ReportRepository) Create(ctx context.Context, rep *Report) error {
	return r.reports.Insert(ctx, rep)
}

func (r *ReportRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*Report, error) {
	return r.reports.FindByID(ctx, id)
}

func (r *ReportRepository) Replace(ctx context.Context, rep *Report) error {
	return r.reports.Replace(ctx, rep.ID, rep)
}

func (r *ReportRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.reports.DeleteByID(ctx, id)
}

func (r *ReportRepository) List(ctx context.Context, f Filter, lo store.ListOptions) (*store.Page[Report], error) {
	filter := store.NewFilter().Eq("type", f.Type).ID("project", f.Project)
	return r.reports.List(ctx, filter.BSON(), lo)
}

package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pairlens/internal/model"
)

// ReportRepo handles MongoDB operations for final reports
type ReportRepo interface {
	Save(ctx context.Context, report *model.FinalReport) error
	GetByPartnershipID(ctx context.Context, partnershipID string) (*model.FinalReport, error)
}

type reportRepo struct {
	reports *mongo.Collection
}

// NewReportRepo creates a new report repository
func NewReportRepo(db *mongo.Database) ReportRepo {
	return &reportRepo{
		reports: db.Collection("final_reports"),
	}
}

func (r *reportRepo) Save(ctx context.Context, report *model.FinalReport) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.reports.ReplaceOne(ctx, bson.M{"partnershipId": report.PartnershipID}, report, opts)
	return err
}

func (r *reportRepo) GetByPartnershipID(ctx context.Context, partnershipID string) (*model.FinalReport, error) {
	var report model.FinalReport
	err := r.reports.FindOne(ctx, bson.M{"partnershipId": partnershipID}).Decode(&report)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}

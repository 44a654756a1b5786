package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"medibook/database"
	"medibook/models"
)

type mongoTemplateRepo struct {
	coll *mongo.Collection
}

func NewMongoTemplateRepo() TemplateRepository {
	return &mongoTemplateRepo{coll: database.Collection("weekly_templates")}
}

func (r *mongoTemplateRepo) GetTemplate(ctx context.Context, providerID string, weekday time.Weekday) (*models.WeeklyTemplate, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "weekday": int(weekday)}
	var tpl models.WeeklyTemplate
	if err := r.coll.FindOne(ctx, filter).Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			exists, existsErr := r.HasProvider(ctx, providerID)
			if existsErr != nil {
				return nil, existsErr
			}
			if !exists {
				return nil, ErrNotFound
			}
			// Provider is registered but has nothing for this weekday.
			return &models.WeeklyTemplate{ProviderID: providerID, Weekday: weekday, IsWorkingDay: false}, nil
		}
		return nil, err
	}
	return &tpl, nil
}

func (r *mongoTemplateRepo) ReplaceWeek(ctx context.Context, providerID string, templates []models.WeeklyTemplate) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"providerId": providerID}); err != nil {
		return err
	}
	docs := make([]interface{}, len(templates))
	for i, tpl := range templates {
		tpl.ProviderID = providerID
		docs[i] = tpl
	}
	if len(docs) == 0 {
		return nil
	}
	_, err := r.coll.InsertMany(ctx, docs)
	return err
}

func (r *mongoTemplateRepo) HasProvider(ctx context.Context, providerID string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"providerId": providerID})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

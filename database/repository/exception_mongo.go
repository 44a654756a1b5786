package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"medibook/database"
	"medibook/models"
)

type mongoExceptionRepo struct {
	coll *mongo.Collection
}

func NewMongoExceptionRepo() ExceptionRepository {
	return &mongoExceptionRepo{coll: database.Collection("calendar_exceptions")}
}

func (r *mongoExceptionRepo) GetException(ctx context.Context, providerID, date string) (*models.CalendarException, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": providerID, "date": date}
	var exc models.CalendarException
	if err := r.coll.FindOne(ctx, filter).Decode(&exc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &exc, nil
}

func (r *mongoExceptionRepo) PutException(ctx context.Context, exc models.CalendarException) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"providerId": exc.ProviderID, "date": exc.Date}
	update := bson.M{"$set": exc}
	_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *mongoExceptionRepo) DeleteException(ctx context.Context, providerID, date string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"providerId": providerID, "date": date})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

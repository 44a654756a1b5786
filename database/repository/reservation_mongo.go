package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"medibook/database"
	"medibook/models"
)

type mongoReservationRepo struct {
	coll *mongo.Collection
}

func NewMongoReservationRepo() ReservationRepository {
	return &mongoReservationRepo{coll: database.Collection("slot_reservations")}
}

// Reserve inserts the reservation keyed by slot id. The unique _id index is
// the compare-and-swap: the second concurrent insert for the same slot fails
// with a duplicate key error and is reported as ErrSlotTaken.
func (r *mongoReservationRepo) Reserve(ctx context.Context, res models.SlotReservation) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if res.CreatedAt.IsZero() {
		res.CreatedAt = time.Now()
	}
	if _, err := r.coll.InsertOne(ctx, res); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrSlotTaken
		}
		return err
	}
	return nil
}

func (r *mongoReservationRepo) Release(ctx context.Context, slotID string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": slotID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoReservationRepo) ListForDate(ctx context.Context, providerID, date string) ([]models.SlotReservation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, bson.M{"providerId": providerID, "date": date})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []models.SlotReservation
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

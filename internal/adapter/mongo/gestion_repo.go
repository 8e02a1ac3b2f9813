package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cardtienda/backend/internal/app/config"
	"github.com/cardtienda/backend/internal/domain/entity"
	"github.com/cardtienda/backend/internal/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	gestionCollectionName = "gestion"
)

// gestionRepository stores inventory overlay records keyed by catalog card
// id; the card id is the document _id, so Upsert is a natural replace.
type gestionRepository struct {
	collection *mongo.Collection
}

func NewGestionRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.GestionRepository {
	return &gestionRepository{
		collection: client.Database(cfg.Database).Collection(gestionCollectionName),
	}
}

func (r *gestionRepository) Upsert(ctx context.Context, record *entity.Gestion) error {
	if record == nil || record.CardID == "" {
		return errors.New("cannot upsert nil gestion record or record with empty card id")
	}

	now := time.Now().UTC()
	record.UpdatedAt = now

	update := bson.M{
		"$set": bson.M{
			"stock_level":            record.StockLevel,
			"active_for_sale":        record.ActiveForSale,
			"custom_price":           record.CustomPrice,
			"catalog_price_snapshot": record.CatalogPriceSnapshot,
			"updated_at":             record.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"created_at": now,
		},
	}

	opts := options.Update().SetUpsert(true)
	if _, err := r.collection.UpdateOne(ctx, bson.M{"_id": record.CardID}, update, opts); err != nil {
		return fmt.Errorf("failed to upsert gestion record for card %s: %w", record.CardID, err)
	}
	return nil
}

func (r *gestionRepository) GetByCardID(ctx context.Context, cardID string) (*entity.Gestion, error) {
	var record entity.Gestion
	err := r.collection.FindOne(ctx, bson.M{"_id": cardID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get gestion record for card %s: %w", cardID, err)
	}
	return &record, nil
}

func (r *gestionRepository) GetByCardIDs(ctx context.Context, cardIDs []string) (map[string]entity.Gestion, error) {
	records := make(map[string]entity.Gestion, len(cardIDs))
	if len(cardIDs) == 0 {
		return records, nil
	}

	cursor, err := r.collection.Find(ctx, bson.M{"_id": bson.M{"$in": cardIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to get gestion records: %w", err)
	}
	defer cursor.Close(ctx)

	var found []entity.Gestion
	if err := cursor.All(ctx, &found); err != nil {
		return nil, fmt.Errorf("failed to decode gestion records: %w", err)
	}
	for _, record := range found {
		records[record.CardID] = record
	}
	return records, nil
}

func (r *gestionRepository) Delete(ctx context.Context, cardID string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": cardID})
	if err != nil {
		return fmt.Errorf("failed to delete gestion record for card %s: %w", cardID, err)
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *gestionRepository) List(ctx context.Context, params repository.ListGestionParams) (*repository.ListGestionResult, error) {
	filter := bson.M{}
	if params.ActiveOnly {
		filter["active_for_sale"] = true
	}

	findOptions := options.Find()
	if params.PageSize > 0 {
		if params.Page <= 0 {
			params.Page = 1
		}
		findOptions.SetSkip(int64((params.Page - 1) * params.PageSize))
		findOptions.SetLimit(int64(params.PageSize))
	}
	findOptions.SetSort(bson.D{{Key: "updated_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list gestion records: %w", err)
	}
	defer cursor.Close(ctx)

	var records []entity.Gestion
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode listed gestion records: %w", err)
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count gestion records: %w", err)
	}

	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (int(totalCount) + params.PageSize - 1) / params.PageSize
	} else if totalCount > 0 {
		totalPages = 1
	}

	return &repository.ListGestionResult{
		Records:     records,
		TotalCount:  totalCount,
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
		TotalPages:  totalPages,
	}, nil
}

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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	quoteCollectionName = "quotes"
)

type quoteRepository struct {
	collection *mongo.Collection
}

func NewQuoteRepository(client *mongo.Client, cfg config.MongoDBConfig) repository.QuoteRepository {
	return &quoteRepository{
		collection: client.Database(cfg.Database).Collection(quoteCollectionName),
	}
}

func (r *quoteRepository) Create(ctx context.Context, quote *entity.Quote) (string, error) {
	doc := *quote
	doc.ID = ""
	doc.CreatedAt = time.Now().UTC()
	doc.UpdatedAt = doc.CreatedAt

	res, err := r.collection.InsertOne(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("failed to create quote: %w", err)
	}

	objectID, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("failed to convert inserted ID to ObjectID")
	}
	return objectID.Hex(), nil
}

func (r *quoteRepository) GetByID(ctx context.Context, quoteID string) (*entity.Quote, error) {
	objID, err := primitive.ObjectIDFromHex(quoteID)
	if err != nil {
		return nil, fmt.Errorf("invalid quote ID format: %w", repository.ErrNotFound)
	}

	var quote entity.Quote
	err = r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&quote)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get quote by ID %s: %w", quoteID, err)
	}
	return &quote, nil
}

func (r *quoteRepository) Update(ctx context.Context, quote *entity.Quote, expectedVersion int) error {
	objID, err := primitive.ObjectIDFromHex(quote.ID)
	if err != nil {
		return fmt.Errorf("invalid quote ID format for update: %w", repository.ErrUpdateFailed)
	}

	filter := bson.M{
		"_id":     objID,
		"version": expectedVersion,
	}
	update := bson.M{
		"$set": bson.M{
			"status":        quote.Status,
			"counter_price": quote.CounterPrice,
			"note":          quote.Note,
			"updated_at":    time.Now().UTC(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update quote %s: %w", quote.ID, err)
	}

	if result.MatchedCount == 0 {
		var existingQuote entity.Quote
		errFind := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&existingQuote)
		if errors.Is(errFind, mongo.ErrNoDocuments) {
			return repository.ErrNotFound
		}
		if errFind == nil && existingQuote.Version != expectedVersion {
			return repository.ErrOptimisticLock
		}
		return repository.ErrUpdateFailed
	}
	return nil
}

func (r *quoteRepository) List(ctx context.Context, params repository.ListQuotesParams) (*repository.ListQuotesResult, error) {
	filter := bson.M{}
	if params.UserID != "" {
		filter["user_id"] = params.UserID
	}
	if params.Status != "" {
		filter["status"] = params.Status
	}

	findOptions := options.Find()
	if params.PageSize > 0 {
		if params.Page <= 0 {
			params.Page = 1
		}
		findOptions.SetSkip(int64((params.Page - 1) * params.PageSize))
		findOptions.SetLimit(int64(params.PageSize))
	}
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer cursor.Close(ctx)

	var quotes []entity.Quote
	if err = cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode listed quotes: %w", err)
	}

	totalCount, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	totalPages := 0
	if params.PageSize > 0 {
		totalPages = (int(totalCount) + params.PageSize - 1) / params.PageSize
	} else if totalCount > 0 {
		totalPages = 1
	}

	return &repository.ListQuotesResult{
		Quotes:      quotes,
		TotalCount:  totalCount,
		CurrentPage: params.Page,
		PageSize:    params.PageSize,
		TotalPages:  totalPages,
	}, nil
}

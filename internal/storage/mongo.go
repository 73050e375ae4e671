package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sammyzayn123/review-scraper/internal/config"
	"github.com/sammyzayn123/review-scraper/internal/types"
)

// MongoArchive keeps a queryable history of scraped review records across
// runs, alongside the per-run CSV artifacts.
type MongoArchive struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoArchive connects to MongoDB and pings it.
func NewMongoArchive(cfg *config.MongoConfig, logger *slog.Logger) (*MongoArchive, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("mongodb connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongodb ping: %w", err)
	}

	return &MongoArchive{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		logger:     logger.With("component", "mongo_archive"),
	}, nil
}

// Archive inserts one document per table row, tagged with the search term
// and scrape time.
func (a *MongoArchive) Archive(ctx context.Context, searchTerm string, table *types.ReviewTable) error {
	if table.Len() == 0 {
		return nil
	}

	scrapedAt := time.Now()
	docs := make([]any, table.Len())
	for i, row := range table.Rows() {
		doc := make(map[string]any, len(types.Columns)+2)
		doc["_search_term"] = searchTerm
		doc["_scraped_at"] = scrapedAt
		for j, col := range types.Columns {
			doc[col] = row[j]
		}
		docs[i] = doc
	}

	insertCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := a.collection.InsertMany(insertCtx, docs); err != nil {
		return &types.StorageError{Backend: "mongodb", Err: err}
	}

	a.logger.Debug("records archived", "term", searchTerm, "count", table.Len())
	return nil
}

// Close disconnects from MongoDB.
func (a *MongoArchive) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.client.Disconnect(ctx)
}

package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"wraith-go/domain/resource"
)

// resourceDocument is the MongoDB document structure for captured resources.
type resourceDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SessionID   string             `bson:"session_id"`
	URL         string             `bson:"url"`
	Status      int64              `bson:"status"`
	StatusText  string             `bson:"status_text,omitempty"`
	Headers     map[string]string  `bson:"headers,omitempty"`
	ContentType string             `bson:"content_type,omitempty"`
	Body        []byte             `bson:"body,omitempty"`
	RequestID   string             `bson:"request_id"`
	FromCache   bool               `bson:"from_cache"`
	Failed      bool               `bson:"failed"`
	Error       string             `bson:"error,omitempty"`
	ReceivedAt  time.Time          `bson:"received_at"`
}

// MongoResourceArchive implements resource.Archive using MongoDB.
type MongoResourceArchive struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoResourceArchive creates a new MongoDB-based resource archive.
func NewMongoResourceArchive(db *MongoDB, logger *slog.Logger) *MongoResourceArchive {
	if logger == nil {
		logger = slog.Default()
	}
	return &MongoResourceArchive{
		collection: db.Collection("resource"),
		logger:     logger,
	}
}

// SaveBatch stores a batch of resources under a session identifier.
func (r *MongoResourceArchive) SaveBatch(ctx context.Context, sessionID string, resources []*resource.Resource) error {
	if len(resources) == 0 {
		return nil
	}

	docs := make([]interface{}, len(resources))
	for i, res := range resources {
		docs[i] = resourceToDocument(sessionID, res)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to insert resources: %w", err)
	}

	r.logger.Info("Resources archived", "session_id", sessionID, "count", len(resources))
	return nil
}

// FindBySession retrieves all archived resources for a session in arrival order.
func (r *MongoResourceArchive) FindBySession(ctx context.Context, sessionID string) ([]*resource.Resource, error) {
	filter := bson.M{"session_id": sessionID}
	opts := options.Find().SetSort(bson.D{{Key: "received_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find resources: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []resourceDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode resources: %w", err)
	}

	resources := make([]*resource.Resource, len(docs))
	for i, doc := range docs {
		resources[i] = documentToResource(&doc)
	}

	return resources, nil
}

// DeleteBySession removes all archived resources for a session.
func (r *MongoResourceArchive) DeleteBySession(ctx context.Context, sessionID string) error {
	filter := bson.M{"session_id": sessionID}
	result, err := r.collection.DeleteMany(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to delete resources: %w", err)
	}

	r.logger.Info("Resources deleted", "session_id", sessionID, "count", result.DeletedCount)
	return nil
}

// resourceToDocument converts a domain Resource to a MongoDB document.
func resourceToDocument(sessionID string, res *resource.Resource) *resourceDocument {
	return &resourceDocument{
		SessionID:   sessionID,
		URL:         res.URL,
		Status:      res.Status,
		StatusText:  res.StatusText,
		Headers:     res.Headers,
		ContentType: res.ContentType,
		Body:        res.Body,
		RequestID:   res.RequestID,
		FromCache:   res.FromCache,
		Failed:      res.Failed,
		Error:       res.Error,
		ReceivedAt:  res.ReceivedAt,
	}
}

// documentToResource converts a MongoDB document to a domain Resource.
func documentToResource(doc *resourceDocument) *resource.Resource {
	return &resource.Resource{
		URL:         doc.URL,
		Status:      doc.Status,
		StatusText:  doc.StatusText,
		Headers:     doc.Headers,
		ContentType: doc.ContentType,
		Body:        doc.Body,
		RequestID:   doc.RequestID,
		FromCache:   doc.FromCache,
		Failed:      doc.Failed,
		Error:       doc.Error,
		ReceivedAt:  doc.ReceivedAt,
	}
}

// Ensure MongoResourceArchive implements resource.Archive
var _ resource.Archive = (*MongoResourceArchive)(nil)

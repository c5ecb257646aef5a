package mongodb

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"report_server/core/port/out"
)

const (
	collectionReportDocuments = "report_documents"

	// Compression threshold for report documents
	documentCompressionThreshold = 512 // 512 bytes
)

// DocumentAdapter implements out.DocumentStore using MongoDB. It holds the
// full report document as a best-effort secondary copy; the Postgres row
// stays authoritative.
type DocumentAdapter struct {
	db         *mongo.Database
	collection *mongo.Collection
	ttl        time.Duration
}

// NewDocumentAdapter creates a new MongoDB document adapter. A zero ttl
// disables expiry.
func NewDocumentAdapter(db *mongo.Database, ttl time.Duration) *DocumentAdapter {
	return &DocumentAdapter{
		db:         db,
		collection: db.Collection(collectionReportDocuments),
		ttl:        ttl,
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *DocumentAdapter) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// storedDocument represents the MongoDB document structure.
type storedDocument struct {
	Key    string `bson:"key"`
	UserID string `bson:"user_id"`

	// Content (potentially compressed JSON)
	Content      []byte `bson:"content"`
	IsCompressed bool   `bson:"is_compressed"`

	// Size info
	OriginalSize   int64 `bson:"original_size"`
	CompressedSize int64 `bson:"compressed_size"`

	// Timestamps
	CreatedAt time.Time `bson:"created_at"`
	ExpiresAt time.Time `bson:"expires_at,omitempty"`
}

// Put stores the document and returns its storage key. Upserts so a
// reprocessed week overwrites the previous copy under the same key.
func (a *DocumentAdapter) Put(ctx context.Context, userID string, document map[string]any, createdAt time.Time) (string, error) {
	contentBytes, err := json.Marshal(document)
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}

	originalSize := int64(len(contentBytes))
	compressedSize := originalSize
	isCompressed := false

	if originalSize > documentCompressionThreshold {
		compressed, err := compressDocument(contentBytes)
		if err != nil {
			return "", fmt.Errorf("failed to compress document: %w", err)
		}
		contentBytes = compressed
		isCompressed = true
		compressedSize = int64(len(compressed))
	}

	key := DocumentKey(userID, createdAt)
	doc := &storedDocument{
		Key:            key,
		UserID:         userID,
		Content:        contentBytes,
		IsCompressed:   isCompressed,
		OriginalSize:   originalSize,
		CompressedSize: compressedSize,
		CreatedAt:      createdAt,
	}
	if a.ttl > 0 {
		doc.ExpiresAt = createdAt.Add(a.ttl)
	}

	opts := options.Replace().SetUpsert(true)
	filter := bson.M{"key": key}

	if _, err := a.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return "", fmt.Errorf("failed to store document: %w", err)
	}
	return key, nil
}

// Get retrieves a document by key.
func (a *DocumentAdapter) Get(ctx context.Context, key string) (map[string]any, error) {
	var doc storedDocument
	filter := bson.M{"key": key}

	err := a.collection.FindOne(ctx, filter).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	contentBytes := doc.Content
	if doc.IsCompressed {
		contentBytes, err = decompressDocument(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress document: %w", err)
		}
	}

	var document map[string]any
	if err := json.Unmarshal(contentBytes, &document); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}
	return document, nil
}

// Delete removes a document by key.
func (a *DocumentAdapter) Delete(ctx context.Context, key string) error {
	filter := bson.M{"key": key}

	if _, err := a.collection.DeleteOne(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// DeleteExpired deletes all expired documents.
func (a *DocumentAdapter) DeleteExpired(ctx context.Context) (int64, error) {
	filter := bson.M{"expires_at": bson.M{"$lt": time.Now()}}

	result, err := a.collection.DeleteMany(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired documents: %w", err)
	}
	return result.DeletedCount, nil
}

// DocumentKey builds the storage key {userID}/{year}/{month}/report_{date}.
func DocumentKey(userID string, createdAt time.Time) string {
	return fmt.Sprintf("%s/%d/%02d/report_%s",
		userID, createdAt.Year(), int(createdAt.Month()), createdAt.Format("2006-01-02"))
}

func compressDocument(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)

	if _, err := writer.Write(data); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompressDocument(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return data, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return io.ReadAll(reader)
}

var _ out.DocumentStore = (*DocumentAdapter)(nil)

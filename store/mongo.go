package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/raushankrgupta/fitly-atelier/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// sessionDoc is one stored record
type sessionDoc struct {
	Key       string    `bson:"_id"`
	Blob      []byte    `bson:"blob"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoStore keeps one document per record key
type MongoStore struct {
	coll  *mongo.Collection
	limit int
}

// NewMongoStore stores records in coll
func NewMongoStore(coll *mongo.Collection, maxBytes int) *MongoStore {
	return &MongoStore{coll: coll, limit: limitOrDefault(maxBytes)}
}

func (m *MongoStore) SaveRecord(ctx context.Context, key string, blob []byte) error {
	if err := checkSize(key, blob, m.limit); err != nil {
		return err
	}
	doc := sessionDoc{Key: key, Blob: blob, UpdatedAt: time.Now()}
	_, err := m.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		if isDocumentTooLarge(err) {
			return fmt.Errorf("%w: %v", ErrQuotaExceeded, err)
		}
		return fmt.Errorf("failed to save record %s: %w", key, err)
	}
	return nil
}

func (m *MongoStore) LoadRecord(ctx context.Context, key string) ([]byte, bool, error) {
	var doc sessionDoc
	err := m.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load record %s: %w", key, err)
	}
	return doc.Blob, true, nil
}

func (m *MongoStore) DeleteRecord(ctx context.Context, key string) error {
	if _, err := m.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", key, err)
	}
	return nil
}

// Keys lists the stored keys with the given prefix in sorted order
func (m *MongoStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexQuote(prefix)}}
	cursor, err := m.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer cursor.Close(ctx)

	keys := []string{}
	for cursor.Next(ctx) {
		var doc struct {
			Key string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}
	sort.Strings(keys)
	return keys, nil
}

func isDocumentTooLarge(err error) bool {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 10334 {
				return true
			}
		}
	}
	return strings.Contains(err.Error(), "too large")
}

func regexQuote(s string) string {
	var b strings.Builder
	for _, r := range s {
		if strings.ContainsRune(`\.+*?()|[]{}^$`, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// GalleryPage is one page of generated images, newest first
type GalleryPage struct {
	Images      []models.TryOn `json:"images"`
	Total       int64          `json:"total"`
	CurrentPage int            `json:"current_page"`
	TotalPages  int            `json:"total_pages"`
}

// MongoGallery records every image a session generates
type MongoGallery struct {
	coll *mongo.Collection
}

func NewMongoGallery(coll *mongo.Collection) *MongoGallery {
	return &MongoGallery{coll: coll}
}

// Record inserts one generated image
func (g *MongoGallery) Record(ctx context.Context, t models.TryOn) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if _, err := g.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("failed to record try-on: %w", err)
	}
	return nil
}

// List returns page (1-based) of a session's images
func (g *MongoGallery) List(ctx context.Context, sessionID string, page, limit int) (GalleryPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	filter := bson.M{"session_id": sessionID, "is_deleted": false}

	total, err := g.coll.CountDocuments(ctx, filter)
	if err != nil {
		return GalleryPage{}, fmt.Errorf("failed to count try-ons: %w", err)
	}

	pages := totalPages(total, limit)
	if page > pages {
		return GalleryPage{Images: []models.TryOn{}, Total: total, CurrentPage: page, TotalPages: pages}, nil
	}

	skip := (page - 1) * limit
	findOptions := options.Find()
	findOptions.SetSort(bson.D{{Key: "created_at", Value: -1}})
	findOptions.SetSkip(int64(skip))
	findOptions.SetLimit(int64(limit))

	cursor, err := g.coll.Find(ctx, filter, findOptions)
	if err != nil {
		return GalleryPage{}, fmt.Errorf("failed to fetch try-ons: %w", err)
	}
	defer cursor.Close(ctx)

	var tryOns []models.TryOn
	if err = cursor.All(ctx, &tryOns); err != nil {
		return GalleryPage{}, fmt.Errorf("failed to decode try-ons: %w", err)
	}
	if tryOns == nil {
		tryOns = []models.TryOn{}
	}

	return GalleryPage{
		Images:      tryOns,
		Total:       total,
		CurrentPage: page,
		TotalPages:  pages,
	}, nil
}

// DeleteSession soft-deletes every image of a session
func (g *MongoGallery) DeleteSession(ctx context.Context, sessionID string) error {
	_, err := g.coll.UpdateMany(ctx,
		bson.M{"session_id": sessionID},
		bson.M{"$set": bson.M{"is_deleted": true}},
	)
	if err != nil {
		return fmt.Errorf("failed to delete try-ons: %w", err)
	}
	return nil
}

func totalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

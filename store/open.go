package store

import (
	"context"
	"fmt"

	"github.com/raushankrgupta/fitly-atelier/config"
	"github.com/raushankrgupta/fitly-atelier/models"
	"github.com/raushankrgupta/fitly-atelier/utils"
	"go.uber.org/zap"
)

// Collection names used by the mongo driver
const (
	SessionsCollection = "sessions"
	TryOnsCollection   = "tryons"
)

// Records is the key/blob side of a backend
type Records interface {
	SaveRecord(ctx context.Context, key string, blob []byte) error
	LoadRecord(ctx context.Context, key string) ([]byte, bool, error)
	DeleteRecord(ctx context.Context, key string) error
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Gallery keeps the history of generated images per session
type Gallery interface {
	Record(ctx context.Context, t models.TryOn) error
	List(ctx context.Context, sessionID string, page, limit int) (GalleryPage, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// Backend bundles the record store and gallery selected by configuration
type Backend struct {
	Records Records
	Gallery Gallery
	Close   func(ctx context.Context) error
}

// Open builds the backend named by driver: "mongo", "redis" or "memory".
// The redis driver has no gallery of its own and keeps it in memory.
func Open(ctx context.Context, driver string) (*Backend, error) {
	maxBytes := config.MaxRecordBytes
	switch driver {
	case "mongo", "mongodb":
		if err := utils.ConnectMongo(config.MongoURI); err != nil {
			return nil, err
		}
		sessions, err := utils.GetCollection(SessionsCollection)
		if err != nil {
			return nil, err
		}
		tryons, err := utils.GetCollection(TryOnsCollection)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Records: NewMongoStore(sessions, maxBytes),
			Gallery: NewMongoGallery(tryons),
			Close:   utils.DisconnectMongo,
		}, nil
	case "redis":
		rs, err := NewRedisStore(ctx, config.RedisAddr, maxBytes)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Records: rs,
			Gallery: NewMemoryGallery(),
			Close:   func(context.Context) error { return rs.Close() },
		}, nil
	case "memory", "":
		utils.Logger.Warn("using in-memory store, sessions are lost on restart")
		return &Backend{
			Records: NewMemoryStore(maxBytes),
			Gallery: NewMemoryGallery(),
			Close:   func(context.Context) error { return nil },
		}, nil
	}
	utils.Logger.Error("unknown store driver", zap.String("driver", driver))
	return nil, fmt.Errorf("unknown store driver %q", driver)
}

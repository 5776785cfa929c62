package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/raushankrgupta/fitly-atelier/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var Client *mongo.Client

// ConnectMongo initializes the MongoDB connection
func ConnectMongo(uri string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database
	err = client.Ping(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to ping mongodb: %w", err)
	}

	Client = client
	Logger.Info("connected to MongoDB", zap.String("database", config.DBName))
	return nil
}

// DisconnectMongo closes the shared client if one is open
func DisconnectMongo(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	err := Client.Disconnect(ctx)
	Client = nil
	return err
}

// GetCollection returns a handle to a collection of the configured database
func GetCollection(collectionName string) (*mongo.Collection, error) {
	if Client == nil {
		return nil, fmt.Errorf("MongoDB client is not initialized")
	}
	return Client.Database(config.DBName).Collection(collectionName), nil
}

package config

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type MongoDBConfig struct {
	URI      string
	Database string
}

type MongoDBClient struct {
	Client   *mongo.Client
	Database *mongo.Database
}

func NewMongoDBClient(lc fx.Lifecycle, cfg *AppConfig, logger *zap.Logger) (*MongoDBClient, *mongo.Database, error) {
	clientOptions := options.Client().ApplyURI(cfg.Mongo.URI)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connect to MongoDB")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, errors.Wrap(err, "ping MongoDB")
	}
	logger.Info("connected to MongoDB", zap.String("database", cfg.Mongo.Database))

	db := client.Database(cfg.Mongo.Database)

	lc.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			return EnsureIndexes(startCtx, db)
		},
		OnStop: func(stopCtx context.Context) error {
			logger.Info("closing MongoDB connection")
			return client.Disconnect(stopCtx)
		},
	})
	return &MongoDBClient{Client: client, Database: db}, db, nil
}

// indexSpecs lists the indexes each collection needs.
var indexSpecs = map[string][]mongo.IndexModel{
	"users": {
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "role", Value: 1}}},
		{Keys: bson.D{{Key: "reset_token_hash", Value: 1}}, Options: options.Index().SetSparse(true)},
	},
	"departments": {
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
	},
	"projects": {
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "client", Value: 1}}},
		{Keys: bson.D{{Key: "members", Value: 1}}},
	},
	"tasks": {
		{Keys: bson.D{{Key: "project", Value: 1}}},
		{Keys: bson.D{{Key: "assignees", Value: 1}}},
		{Keys: bson.D{{Key: "due_date", Value: 1}}},
	},
	"comments": {
		{Keys: bson.D{{Key: "task", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "project", Value: 1}, {Key: "created_at", Value: 1}}},
	},
	"notifications": {
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "read", Value: 1}}},
	},
	"meetings": {
		{Keys: bson.D{{Key: "start_time", Value: 1}}},
	},
	"events": {
		{Keys: bson.D{{Key: "start", Value: 1}}},
	},
	"reports": {
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "created_at", Value: -1}}},
	},
}

// EnsureIndexes creates the indexes listed in indexSpecs. It is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	for coll, models := range indexSpecs {
		if _, err := db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return errors.Wrapf(err, "create indexes on %s", coll)
		}
	}
	return nil
}

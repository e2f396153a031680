package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ngprojetos/inscricao-eventos/internal/logging"
	"github.com/ngprojetos/inscricao-eventos/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.opentelemetry.io/contrib/instrumentation/go.mongodb.org/mongo-driver/mongo/otelmongo"
	"go.uber.org/zap"
)

var (
	// MongoDB database used by the audit trail; nil when auditing is disabled
	MongoDB *mongo.Database
	// Redis client
	Redis *redisclient.Client
)

// InitMongoDB initializes the MongoDB connection used by the audit trail.
// It is a no-op when MONGODB_URI is empty.
func InitMongoDB() error {
	if !AppConfig.AuditEnabled() {
		logging.Logger.Info("MONGODB_URI not set, audit trail disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	opts := options.Client().
		ApplyURI(AppConfig.MongoURI).
		SetMonitor(otelmongo.NewMonitor()).
		SetMaxPoolSize(20).
		SetMinPoolSize(2).
		SetMaxConnIdleTime(5 * time.Minute).
		SetRetryWrites(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoDB = client.Database(AppConfig.MongoDatabase)

	if err := EnsureAuditLogsIndex(ctx, MongoDB.Collection(AppConfig.AuditLogsCollection)); err != nil {
		logging.Logger.Error("failed to ensure audit_logs indexes on startup", zap.Error(err))
	}

	logging.Logger.Info("connected to MongoDB",
		zap.String("uri", maskMongoURI(AppConfig.MongoURI)),
		zap.String("database", AppConfig.MongoDatabase),
	)
	return nil
}

// DisconnectMongoDB closes the MongoDB client if one was opened
func DisconnectMongoDB(ctx context.Context) {
	if MongoDB == nil {
		return
	}
	if err := MongoDB.Client().Disconnect(ctx); err != nil {
		logging.Logger.Warn("failed to disconnect MongoDB", zap.Error(err))
	}
}

// InitRedis initializes the Redis connection
func InitRedis() error {
	opts, err := redisOptions(AppConfig)
	if err != nil {
		return err
	}

	Redis = redisclient.NewClient(redis.NewClient(opts))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := Redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
	}

	logging.Logger.Info("connected to Redis", zap.String("addr", opts.Addr))
	return nil
}

// redisOptions accepts both redis:// URLs and bare host:port addresses
func redisOptions(cfg *Config) (*redis.Options, error) {
	var opts *redis.Options
	if strings.Contains(cfg.RedisURI, "://") {
		parsed, err := redis.ParseURL(cfg.RedisURI)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_URI: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: cfg.RedisURI}
	}

	if cfg.RedisPassword != "" {
		opts.Password = cfg.RedisPassword
	}
	if cfg.RedisDB != 0 {
		opts.DB = cfg.RedisDB
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolSize = 10
	opts.MinIdleConns = 2
	return opts, nil
}

// maskMongoURI masks sensitive information in MongoDB URI
func maskMongoURI(uri string) string {
	at := strings.LastIndex(uri, "@")
	if at < 0 {
		return uri
	}
	scheme := "mongodb://"
	if strings.HasPrefix(uri, "mongodb+srv://") {
		scheme = "mongodb+srv://"
	}
	return scheme + "****:****@" + uri[at+1:]
}

// EnsureAuditLogsIndex creates the required indexes for the audit logs collection
func EnsureAuditLogsIndex(ctx context.Context, collection *mongo.Collection) error {
	logger := logging.Logger.Named("database")

	cursor, err := collection.Indexes().List(ctx)
	if err != nil {
		logger.Error("failed to list indexes", zap.Error(err))
		return err
	}
	defer cursor.Close(ctx)

	existingIndexes := make(map[string]bool)
	for cursor.Next(ctx) {
		var index bson.M
		if err := cursor.Decode(&index); err != nil {
			continue
		}
		if name, ok := index["name"].(string); ok {
			existingIndexes[name] = true
		}
	}

	indexesToCreate := []mongo.IndexModel{}

	if !existingIndexes["session_id_1"] {
		indexesToCreate = append(indexesToCreate, mongo.IndexModel{
			Keys:    bson.D{{Key: "session_id", Value: 1}},
			Options: options.Index().SetName("session_id_1"),
		})
	}

	if !existingIndexes["action_1_resource_1"] {
		indexesToCreate = append(indexesToCreate, mongo.IndexModel{
			Keys:    bson.D{{Key: "action", Value: 1}, {Key: "resource", Value: 1}},
			Options: options.Index().SetName("action_1_resource_1"),
		})
	}

	// keep the trail for one year
	if !existingIndexes["timestamp_ttl"] {
		indexesToCreate = append(indexesToCreate, mongo.IndexModel{
			Keys: bson.D{{Key: "timestamp", Value: 1}},
			Options: options.Index().
				SetName("timestamp_ttl").
				SetExpireAfterSeconds(365 * 24 * 60 * 60),
		})
	}

	for _, indexModel := range indexesToCreate {
		if _, err := collection.Indexes().CreateOne(ctx, indexModel); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				logger.Info("audit_logs index already exists (created by another instance)",
					zap.String("collection", collection.Name()))
				continue
			}
			logger.Error("failed to create audit_logs index",
				zap.String("collection", collection.Name()),
				zap.Error(err))
			return err
		}
	}

	if len(indexesToCreate) > 0 {
		logger.Info("created audit_logs collection indexes",
			zap.String("collection", collection.Name()),
			zap.Int("count", len(indexesToCreate)))
	}
	return nil
}

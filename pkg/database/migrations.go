package database

import (
	"context"
	"fmt"
	"time"

	"skillswap/pkg/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const migrationsCollection = "migrations"

type Migration struct {
	Version     int
	Description string
	Up          func(context.Context, *mongo.Database) error
	Down        func(context.Context, *mongo.Database) error
}

type Migrator struct {
	db         *mongo.Database
	log        *logger.Logger
	migrations []Migration
}

func NewMigrator(db *mongo.Database, log *logger.Logger) *Migrator {
	return &Migrator{
		db:         db,
		log:        log,
		migrations: getMigrations(),
	}
}

// Up applies every migration newer than the recorded version.
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.createMigrationsCollection(ctx); err != nil {
		return err
	}

	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for _, migration := range m.migrations {
		if migration.Version <= currentVersion {
			continue
		}

		m.log.Infof("Running migration %d: %s", migration.Version, migration.Description)

		if err := migration.Up(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if err := m.updateVersion(ctx, migration.Version); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

// Down reverts migrations until targetVersion is the recorded version.
func (m *Migrator) Down(ctx context.Context, targetVersion int) error {
	currentVersion, err := m.getCurrentVersion(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		migration := m.migrations[i]
		if migration.Version > currentVersion || migration.Version <= targetVersion {
			continue
		}

		m.log.Infof("Reverting migration %d: %s", migration.Version, migration.Description)

		if err := migration.Down(ctx, m.db); err != nil {
			return fmt.Errorf("migration %d rollback failed: %w", migration.Version, err)
		}

		previousVersion := targetVersion
		if i > 0 {
			previousVersion = m.migrations[i-1].Version
		}

		if err := m.updateVersion(ctx, previousVersion); err != nil {
			return fmt.Errorf("failed to update migration version: %w", err)
		}
	}

	return nil
}

func (m *Migrator) createMigrationsCollection(ctx context.Context) error {
	collections, err := m.db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: migrationsCollection}})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}
	if len(collections) > 0 {
		return nil
	}

	return m.db.CreateCollection(ctx, migrationsCollection)
}

func (m *Migrator) getCurrentVersion(ctx context.Context) (int, error) {
	var result struct {
		Version int `bson:"version"`
	}

	err := m.db.Collection(migrationsCollection).FindOne(ctx, bson.D{}).Decode(&result)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to read migration version: %w", err)
	}

	return result.Version, nil
}

func (m *Migrator) updateVersion(ctx context.Context, version int) error {
	_, err := m.db.Collection(migrationsCollection).ReplaceOne(
		ctx,
		bson.D{},
		bson.D{{Key: "version", Value: version}, {Key: "updated_at", Value: time.Now()}},
		options.Replace().SetUpsert(true),
	)

	return err
}

func getMigrations() []Migration {
	return []Migration{
		{
			Version:     1,
			Description: "Create users indexes",
			Up:          createUsersIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection("users").Indexes().DropAll(ctx)
				return err
			},
		},
		{
			Version:     2,
			Description: "Create swaps indexes",
			Up:          createSwapsIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection("swaps").Indexes().DropAll(ctx)
				return err
			},
		},
		{
			Version:     3,
			Description: "Create audit logs indexes",
			Up:          createAuditLogsIndexes,
			Down: func(ctx context.Context, db *mongo.Database) error {
				_, err := db.Collection("audit_logs").Indexes().DropAll(ctx)
				return err
			},
		},
	}
}

func createUsersIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "role", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "is_banned", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "rating", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := db.Collection("users").Indexes().CreateMany(ctx, indexes)
	return err
}

func createSwapsIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "requester", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			// Pending-between-pair lookup
			Keys: bson.D{{Key: "requester", Value: 1}, {Key: "recipient", Value: 1}, {Key: "status", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
	}

	_, err := db.Collection("swaps").Indexes().CreateMany(ctx, indexes)
	return err
}

func createAuditLogsIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "resource", Value: 1}, {Key: "resource_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	_, err := db.Collection("audit_logs").Indexes().CreateMany(ctx, indexes)
	return err
}

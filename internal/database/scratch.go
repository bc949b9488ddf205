package database

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateScratchDatabase creates an empty database next to the one admin is
// connected to and returns a pool on it. Statements can then be described
// against a schema loaded with ApplySchema without touching real data.
func CreateScratchDatabase(ctx context.Context, admin *Pool) (*Pool, error) {
	timestamp := time.Now().Format("20060102_150405")
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return nil, fmt.Errorf("failed to generate random suffix: %w", err)
	}
	dbName := fmt.Sprintf("esqlscan_%s_%s", timestamp, hex.EncodeToString(randomBytes))

	if _, err := admin.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{dbName}.Sanitize()); err != nil {
		return nil, fmt.Errorf("failed to create scratch database: %w", err)
	}

	// keep every option of the admin connection (sslmode, ...) except the database
	config := admin.Pool.Config()
	config.ConnConfig.Database = dbName

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		_, _ = admin.Exec(ctx, "DROP DATABASE IF EXISTS "+pgx.Identifier{dbName}.Sanitize())
		return nil, fmt.Errorf("failed to connect to scratch database: %w", err)
	}

	return &Pool{Pool: pool, config: admin.config}, nil
}

// DestroyScratchDatabase closes scratch and drops its database.
func DestroyScratchDatabase(ctx context.Context, admin *Pool, scratch *Pool) error {
	if scratch == nil || scratch.Pool == nil {
		return nil
	}
	dbName := scratch.Pool.Config().ConnConfig.Database
	scratch.Close()
	_, err := admin.Exec(ctx, fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", pgx.Identifier{dbName}.Sanitize()))
	return err
}

// ApplySchema executes each file as one simple-protocol batch.
func (p *Pool) ApplySchema(ctx context.Context, files []string) error {
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read schema file %s: %w", file, err)
		}
		if _, err := p.Exec(ctx, string(data), pgx.QueryExecModeSimpleProtocol); err != nil {
			return fmt.Errorf("failed to apply schema file %s: %w", file, err)
		}
	}
	return nil
}

// Name returns the database the pool is connected to.
func (p *Pool) Name() string {
	return p.Pool.Config().ConnConfig.Database
}

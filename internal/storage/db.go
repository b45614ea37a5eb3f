package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/container-census/containerwatch/internal/activity"
	"github.com/container-census/containerwatch/internal/engines"
	"github.com/container-census/containerwatch/internal/models"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	log "github.com/sirupsen/logrus"
)

// DB handles snapshot persistence on SQLite or PostgreSQL
type DB struct {
	conn   *sql.DB
	driver string
}

// New opens the database for driver ("sqlite3" or "postgres") and initializes schema
func New(driver, dsn string) (*DB, error) {
	switch driver {
	case "sqlite3":
		// _busy_timeout=5000: Wait up to 5 seconds for locks
		// _journal_mode=WAL: Enable Write-Ahead Logging for better concurrency
		if !strings.Contains(dsn, "?") {
			dsn += "?_busy_timeout=5000&_journal_mode=WAL"
		}
	case "postgres":
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(10)
	conn.SetMaxIdleConns(5)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{conn: conn, driver: driver}

	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the database tables
func (db *DB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS container_snapshots (
		id TEXT PRIMARY KEY,
		engine TEXT NOT NULL,
		container_id TEXT NOT NULL,
		container_name TEXT NOT NULL,
		image TEXT NOT NULL,
		status TEXT NOT NULL,
		cpu_percent DOUBLE PRECISION NOT NULL DEFAULT 0,
		memory_usage BIGINT NOT NULL DEFAULT 0,
		memory_limit BIGINT NOT NULL DEFAULT 0,
		network_rx BIGINT NOT NULL DEFAULT 0,
		network_tx BIGINT NOT NULL DEFAULT 0,
		io_read BIGINT NOT NULL DEFAULT 0,
		io_write BIGINT NOT NULL DEFAULT 0,
		collected_at TIMESTAMP NOT NULL,
		payload TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_container ON container_snapshots(container_id, collected_at);
	CREATE INDEX IF NOT EXISTS idx_snapshots_collected_at ON container_snapshots(collected_at);
	`

	_, err := db.conn.Exec(schema)
	return err
}

// rebind rewrites ? placeholders to $n for PostgreSQL
func (db *DB) rebind(query string) string {
	if db.driver != "postgres" {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SaveSnapshot stores one row per container in stats, all stamped with at
func (db *DB) SaveSnapshot(stats engines.ContainersStatistics, at time.Time) (int, error) {
	if len(stats.Containers) == 0 {
		return 0, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(db.rebind(`
		INSERT INTO container_snapshots
		(id, engine, container_id, container_name, image, status, cpu_percent, memory_usage, memory_limit, network_rx, network_tx, io_read, io_write, collected_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`))
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for _, row := range stats.Containers {
		s, err := SnapshotFromRow(stats.Engine, row, at)
		if err != nil {
			return 0, err
		}

		_, err = stmt.Exec(
			s.ID, s.Engine, s.ContainerID, s.ContainerName, s.Image, s.Status,
			s.CPUPercent, s.MemoryUsage, s.MemoryLimit,
			s.NetworkRx, s.NetworkTx, s.IORead, s.IOWrite,
			s.CollectedAt, s.Payload,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to save snapshot for %s: %w", s.ContainerName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	log.Debugf("DB: saved %d %s snapshots", len(stats.Containers), stats.Engine)
	return len(stats.Containers), nil
}

// SnapshotFromRow flattens one Stats row into a storable snapshot
func SnapshotFromRow(engine string, row map[string]interface{}, at time.Time) (models.Snapshot, error) {
	payload, err := json.Marshal(row)
	if err != nil {
		return models.Snapshot{}, fmt.Errorf("failed to encode payload: %w", err)
	}

	return models.Snapshot{
		ID:            uuid.New().String(),
		Engine:        engine,
		ContainerID:   stringField(row, "id"),
		ContainerName: stringField(row, "name"),
		Image:         stringField(row, "image"),
		Status:        stringField(row, "status"),
		CPUPercent:    activity.CPUPercent(row),
		MemoryUsage:   int64(activity.Field(row, "memory", "usage")),
		MemoryLimit:   int64(activity.Field(row, "memory", "limit")),
		NetworkRx:     int64(activity.Field(row, "network", "rx")),
		NetworkTx:     int64(activity.Field(row, "network", "tx")),
		IORead:        int64(activity.Field(row, "io", "ior")),
		IOWrite:       int64(activity.Field(row, "io", "iow")),
		CollectedAt:   at.UTC(),
		Payload:       string(payload),
	}, nil
}

func stringField(row map[string]interface{}, key string) string {
	s, _ := row[key].(string)
	return s
}

// GetContainerHistory returns the most recent snapshots of one container, newest first
func (db *DB) GetContainerHistory(containerID string, limit int) ([]models.Snapshot, error) {
	rows, err := db.conn.Query(db.rebind(`
		SELECT id, engine, container_id, container_name, image, status,
		       cpu_percent, memory_usage, memory_limit, network_rx, network_tx, io_read, io_write,
		       collected_at, payload
		FROM container_snapshots
		WHERE container_id = ? OR container_name = ?
		ORDER BY collected_at DESC
		LIMIT ?
	`), containerID, containerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []models.Snapshot
	for rows.Next() {
		var s models.Snapshot
		var payload sql.NullString

		err := rows.Scan(&s.ID, &s.Engine, &s.ContainerID, &s.ContainerName, &s.Image, &s.Status,
			&s.CPUPercent, &s.MemoryUsage, &s.MemoryLimit, &s.NetworkRx, &s.NetworkTx, &s.IORead, &s.IOWrite,
			&s.CollectedAt, &payload)
		if err != nil {
			return nil, err
		}

		if payload.Valid {
			s.Payload = payload.String
		}

		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}

// CleanupOlderThan deletes snapshots collected before cutoff
func (db *DB) CleanupOlderThan(cutoff time.Time) (int64, error) {
	result, err := db.conn.Exec(db.rebind("DELETE FROM container_snapshots WHERE collected_at < ?"), cutoff.UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

package capture

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/chrissnell/motionsync/internal/syncerr"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE capture_groups (
	position INTEGER PRIMARY KEY,
	name     TEXT NOT NULL UNIQUE
);
CREATE TABLE capture_attributes (
	group_name TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	PRIMARY KEY (group_name, key)
);
CREATE TABLE capture_samples (
	group_name TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	time_us    INTEGER NOT NULL,
	ax         REAL NOT NULL,
	ay         REAL NOT NULL,
	az         REAL NOT NULL,
	PRIMARY KEY (group_name, seq)
);
`

// Root attributes are stored under the empty group name.
const rootGroup = ""

func readSQLite(ctx context.Context, path string) (*Document, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, syncerr.FileFormat(path, "failed to open SQLite capture", err)
	}
	defer db.Close()

	doc := &Document{Attributes: map[string]string{}}

	rows, err := db.QueryContext(ctx, `SELECT name FROM capture_groups ORDER BY position`)
	if err != nil {
		return nil, syncerr.FileFormat(path, "not a capture database", err)
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, syncerr.FileFormat(path, "failed to scan group", err)
		}
		doc.Groups = append(doc.Groups, Group{Name: name, Attributes: map[string]string{}})
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, syncerr.FileFormat(path, "failed to read groups", err)
	}

	if err := readSQLiteAttributes(ctx, db, doc); err != nil {
		return nil, syncerr.FileFormat(path, "failed to read attributes", err)
	}

	for i := range doc.Groups {
		if err := readSQLiteSamples(ctx, db, &doc.Groups[i]); err != nil {
			return nil, syncerr.FileFormat(path, fmt.Sprintf("failed to read samples of group %q", doc.Groups[i].Name), err)
		}
	}

	return doc, nil
}

func readSQLiteAttributes(ctx context.Context, db *sql.DB, doc *Document) error {
	rows, err := db.QueryContext(ctx, `SELECT group_name, key, value FROM capture_attributes`)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var groupName, key, value string
		if err := rows.Scan(&groupName, &key, &value); err != nil {
			return err
		}
		if groupName == rootGroup {
			doc.Attributes[key] = value
			continue
		}
		if g := doc.group(groupName); g != nil {
			g.Attributes[key] = value
		}
	}
	return rows.Err()
}

func readSQLiteSamples(ctx context.Context, db *sql.DB, g *Group) error {
	rows, err := db.QueryContext(ctx,
		`SELECT time_us, ax, ay, az FROM capture_samples WHERE group_name = ? ORDER BY seq`, g.Name)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var t int64
		var s [3]float64
		if err := rows.Scan(&t, &s[0], &s[1], &s[2]); err != nil {
			return err
		}
		g.Time = append(g.Time, t)
		g.Accelerometer = append(g.Accelerometer, s)
	}
	return rows.Err()
}

// WriteSQLite stores doc in a new SQLite capture database at path, replacing
// any existing file.
func WriteSQLite(ctx context.Context, path string, doc *Document) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	for k, v := range doc.Attributes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO capture_attributes (group_name, key, value) VALUES (?, ?, ?)`, rootGroup, k, v); err != nil {
			return fmt.Errorf("failed to insert attribute %q: %w", k, err)
		}
	}

	sampleStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO capture_samples (group_name, seq, time_us, ax, ay, az) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer sampleStmt.Close()

	for pos, g := range doc.Groups {
		if g.Name == rootGroup {
			return fmt.Errorf("group %d has an empty name", pos)
		}
		if len(g.Time) != len(g.Accelerometer) {
			return fmt.Errorf("group %q has %d timestamps but %d samples", g.Name, len(g.Time), len(g.Accelerometer))
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO capture_groups (position, name) VALUES (?, ?)`, pos, g.Name); err != nil {
			return fmt.Errorf("failed to insert group %q: %w", g.Name, err)
		}
		for k, v := range g.Attributes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO capture_attributes (group_name, key, value) VALUES (?, ?, ?)`, g.Name, k, v); err != nil {
				return fmt.Errorf("failed to insert attribute %q of group %q: %w", k, g.Name, err)
			}
		}
		for i, t := range g.Time {
			s := g.Accelerometer[i]
			if _, err := sampleStmt.ExecContext(ctx, g.Name, i, t, s[0], s[1], s[2]); err != nil {
				return fmt.Errorf("failed to insert sample %d of group %q: %w", i, g.Name, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit capture: %w", err)
	}
	return nil
}

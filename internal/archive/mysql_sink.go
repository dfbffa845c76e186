package archive

import (
	"database/sql"
	"encoding/json"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLSink writes each archived match's GameMetadata row and per-match
// events (spec.md §6 "Persistence"); it writes no Users rows. It is fed by Consumer, never called
// directly from the Engine task.
type MySQLSink struct {
	db *sql.DB
}

func OpenMySQLSink(dsn string) (*MySQLSink, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &MySQLSink{db: db}, nil
}

// Migrate creates the three tables spec.md §6 sketches, if absent.
func (s *MySQLSink) Migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(64) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			permission INT NOT NULL DEFAULT 0,
			banned BOOLEAN NOT NULL DEFAULT FALSE,
			since DATETIME NOT NULL,
			saved_setups JSON
		)`,
		`CREATE TABLE IF NOT EXISTS game_metadata (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			room_id BIGINT NOT NULL,
			title VARCHAR(16) NOT NULL,
			inventor VARCHAR(64),
			formation JSON,
			constraints JSON,
			exclusion JSON,
			total INT NOT NULL,
			private BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS game_events (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			game_metadata_id BIGINT NOT NULL,
			seq INT NOT NULL,
			row JSON NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *MySQLSink) writeWire(w wireGame) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	res, err := tx.Exec(
		`INSERT INTO game_metadata (room_id, title, inventor, formation, constraints, exclusion, total, private) VALUES (?, ?, '', '[]', '{}', '{}', ?, ?)`,
		w.RoomID, w.Title, len(w.Transcript), w.Private,
	)
	if err != nil {
		tx.Rollback()
		return err
	}
	metaID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return err
	}
	for i, row := range w.Transcript {
		raw, err := json.Marshal(row)
		if err != nil {
			continue
		}
		if _, err := tx.Exec(`INSERT INTO game_events (game_metadata_id, seq, row) VALUES (?, ?, ?)`, metaID, i, raw); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

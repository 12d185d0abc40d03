// Package sqlite implements persistence.Store on a SQLite database file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/brewmarsh/family-bell/internal/bell"
	"github.com/brewmarsh/family-bell/internal/persistence"
)

const schema = `
CREATE TABLE IF NOT EXISTS bells (
	id           TEXT PRIMARY KEY,
	name         TEXT NOT NULL,
	time         TEXT NOT NULL,
	message      TEXT NOT NULL,
	days         TEXT NOT NULL,
	speakers     TEXT NOT NULL,
	enabled      INTEGER NOT NULL,
	tts_provider TEXT NOT NULL DEFAULT '',
	tts_voice    TEXT NOT NULL DEFAULT '',
	tts_language TEXT NOT NULL DEFAULT '',
	sound_media  TEXT NOT NULL DEFAULT '',
	sound_device TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS vacation_ranges (
	seq        INTEGER PRIMARY KEY AUTOINCREMENT,
	start_date TEXT NOT NULL,
	end_date   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

const (
	settingVacationEnabled = "vacation_enabled"
	settingLastDefaults    = "last_defaults"
)

// Storage is a SQLite-backed persistence.Store.
type Storage struct {
	db *sql.DB
}

var _ persistence.Store = (*Storage)(nil)

// Open opens (or creates) the database at dsn and applies the schema.
// Use ":memory:" for an ephemeral database.
func Open(dsn string) (*Storage, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", dsn, err)
	}
	// SQLite handles one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: applying schema: %w", err)
	}
	return &Storage{db: db}, nil
}

// Close closes the underlying database.
func (s *Storage) Close() error {
	return s.db.Close()
}

// LoadSnapshot reads every bell, the vacation schedule, and the last-used
// defaults in one consistent view.
func (s *Storage) LoadSnapshot(ctx context.Context) (bell.Snapshot, error) {
	var snap bell.Snapshot

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, time, message, days, speakers, enabled,
		       tts_provider, tts_voice, tts_language, sound_media, sound_device
		FROM bells ORDER BY time, id`)
	if err != nil {
		return bell.Snapshot{}, fmt.Errorf("sqlite: listing bells: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			b              bell.Bell
			days, speakers string
			enabled        int
			media, device  string
		)
		if err := rows.Scan(&b.ID, &b.Name, &b.Time, &b.Message, &days, &speakers, &enabled,
			&b.TTSProvider, &b.TTSVoice, &b.TTSLanguage, &media, &device); err != nil {
			return bell.Snapshot{}, fmt.Errorf("sqlite: scanning bell: %w", err)
		}
		if err := json.Unmarshal([]byte(days), &b.Days); err != nil {
			return bell.Snapshot{}, fmt.Errorf("sqlite: decoding days for %s: %w", b.ID, err)
		}
		if err := json.Unmarshal([]byte(speakers), &b.Speakers); err != nil {
			return bell.Snapshot{}, fmt.Errorf("sqlite: decoding speakers for %s: %w", b.ID, err)
		}
		b.Enabled = enabled != 0
		if media != "" {
			b.Sound = &bell.Sound{MediaID: media, DeviceID: device}
		}
		snap.Bells = append(snap.Bells, b)
	}
	if err := rows.Err(); err != nil {
		return bell.Snapshot{}, fmt.Errorf("sqlite: listing bells: %w", err)
	}

	vacation, err := s.loadVacation(ctx)
	if err != nil {
		return bell.Snapshot{}, err
	}
	snap.Vacation = vacation

	if raw, ok, err := s.setting(ctx, settingLastDefaults); err != nil {
		return bell.Snapshot{}, err
	} else if ok {
		var last bell.TTS
		if err := json.Unmarshal([]byte(raw), &last); err != nil {
			return bell.Snapshot{}, fmt.Errorf("sqlite: decoding last defaults: %w", err)
		}
		snap.LastDefaults = &last
	}

	return snap, nil
}

// SaveBell inserts or replaces a bell.
func (s *Storage) SaveBell(ctx context.Context, b bell.Bell) error {
	days, err := json.Marshal(b.Days)
	if err != nil {
		return fmt.Errorf("sqlite: encoding days: %w", err)
	}
	speakers, err := json.Marshal(b.Speakers)
	if err != nil {
		return fmt.Errorf("sqlite: encoding speakers: %w", err)
	}

	var media, device string
	if b.Sound != nil {
		media = b.Sound.MediaID
		device = b.Sound.DeviceID
	}
	enabled := 0
	if b.Enabled {
		enabled = 1
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO bells (id, name, time, message, days, speakers, enabled,
		                   tts_provider, tts_voice, tts_language, sound_media, sound_device)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			time = excluded.time,
			message = excluded.message,
			days = excluded.days,
			speakers = excluded.speakers,
			enabled = excluded.enabled,
			tts_provider = excluded.tts_provider,
			tts_voice = excluded.tts_voice,
			tts_language = excluded.tts_language,
			sound_media = excluded.sound_media,
			sound_device = excluded.sound_device`,
		b.ID, b.Name, b.Time, b.Message, string(days), string(speakers), enabled,
		b.TTSProvider, b.TTSVoice, b.TTSLanguage, media, device)
	if err != nil {
		return fmt.Errorf("sqlite: saving bell %s: %w", b.ID, err)
	}
	return nil
}

// DeleteBell removes a bell by id.
func (s *Storage) DeleteBell(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bells WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting bell %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return persistence.ErrNotFound
	}
	return nil
}

// SaveVacation replaces the stored schedule wholesale, preserving the range
// order it was given.
func (s *Storage) SaveVacation(ctx context.Context, v bell.VacationSchedule) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin vacation tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM vacation_ranges`); err != nil {
		return fmt.Errorf("sqlite: clearing vacation ranges: %w", err)
	}
	for _, r := range v.Ranges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO vacation_ranges (start_date, end_date) VALUES (?, ?)`,
			r.Start.String(), r.End.String()); err != nil {
			return fmt.Errorf("sqlite: inserting vacation range: %w", err)
		}
	}

	enabled := "0"
	if v.Enabled {
		enabled = "1"
	}
	if err := setSettingTx(ctx, tx, settingVacationEnabled, enabled); err != nil {
		return err
	}
	return tx.Commit()
}

// SaveLastDefaults records the most recently saved TTS triple.
func (s *Storage) SaveLastDefaults(ctx context.Context, t bell.TTS) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("sqlite: encoding last defaults: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		settingLastDefaults, string(raw))
	if err != nil {
		return fmt.Errorf("sqlite: saving last defaults: %w", err)
	}
	return nil
}

func (s *Storage) loadVacation(ctx context.Context) (bell.VacationSchedule, error) {
	var v bell.VacationSchedule

	if raw, ok, err := s.setting(ctx, settingVacationEnabled); err != nil {
		return bell.VacationSchedule{}, err
	} else if ok {
		v.Enabled = raw == "1"
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT start_date, end_date FROM vacation_ranges ORDER BY seq`)
	if err != nil {
		return bell.VacationSchedule{}, fmt.Errorf("sqlite: listing vacation ranges: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var start, end string
		if err := rows.Scan(&start, &end); err != nil {
			return bell.VacationSchedule{}, fmt.Errorf("sqlite: scanning vacation range: %w", err)
		}
		startDate, err := bell.ParseDate(start)
		if err != nil {
			return bell.VacationSchedule{}, err
		}
		endDate, err := bell.ParseDate(end)
		if err != nil {
			return bell.VacationSchedule{}, err
		}
		v.Ranges = append(v.Ranges, bell.DateRange{Start: startDate, End: endDate})
	}
	if err := rows.Err(); err != nil {
		return bell.VacationSchedule{}, fmt.Errorf("sqlite: listing vacation ranges: %w", err)
	}
	return v, nil
}

func (s *Storage) setting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlite: reading setting %s: %w", key, err)
	}
	return value, true, nil
}

func setSettingTx(ctx context.Context, tx *sql.Tx, key, value string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		return fmt.Errorf("sqlite: writing setting %s: %w", key, err)
	}
	return nil
}

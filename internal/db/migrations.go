package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`CREATE TABLE IF NOT EXISTS users (
		id              UUID PRIMARY KEY,
		email           TEXT NOT NULL,
		email_verified  BOOLEAN NOT NULL DEFAULT false,
		password_hash   TEXT NOT NULL,
		name            TEXT NOT NULL,
		role            TEXT NOT NULL DEFAULT 'player',
		handedness      TEXT,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users(email);`,
	`CREATE TABLE IF NOT EXISTS rounds (
		id                UUID PRIMARY KEY,
		user_id           UUID NOT NULL REFERENCES users(id),
		course_id         TEXT NOT NULL,
		course_name       TEXT NOT NULL,
		tee_time          TIMESTAMPTZ NOT NULL,
		expected_timeline JSONB,
		handedness        TEXT NOT NULL,
		status            TEXT NOT NULL DEFAULT 'scheduled',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		completed_at      TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_rounds_user_id ON rounds(user_id);`,
	`CREATE TABLE IF NOT EXISTS clips (
		id                UUID PRIMARY KEY,
		round_id          UUID NOT NULL REFERENCES rounds(id),
		subject_id        TEXT,
		hole_number       INT NOT NULL,
		camera_id         TEXT,
		hls_manifest      TEXT,
		poster_url        TEXT,
		duration_sec      INT,
		face_blur_applied BOOLEAN NOT NULL DEFAULT false,
		published_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_clips_round_id ON clips(round_id);`,
	`CREATE TABLE IF NOT EXISTS subject_profiles (
		id           UUID PRIMARY KEY,
		round_id     UUID NOT NULL REFERENCES rounds(id),
		user_id      UUID REFERENCES users(id),
		type         TEXT NOT NULL,
		top_color    TEXT NOT NULL,
		top_style    TEXT,
		bottom_color TEXT NOT NULL,
		hat_color    TEXT,
		shoes_color  TEXT,
		handedness   TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_subject_profiles_round_id ON subject_profiles(round_id);`,
	`CREATE TABLE IF NOT EXISTS vision_events (
		id           UUID PRIMARY KEY,
		round_id     UUID NOT NULL REFERENCES rounds(id),
		hole_number  INT NOT NULL,
		camera_angle TEXT NOT NULL,
		detections   JSONB,
		event_time   TIMESTAMPTZ NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_vision_events_round_id ON vision_events(round_id);`,
	`CREATE INDEX IF NOT EXISTS idx_vision_events_event_time ON vision_events(event_time);`,
	`CREATE TABLE IF NOT EXISTS capture_triggers (
		id             UUID PRIMARY KEY,
		round_id       UUID NOT NULL REFERENCES rounds(id),
		player_id      TEXT NOT NULL,
		hole_number    INT NOT NULL,
		camera_angle   TEXT,
		trigger_reason TEXT,
		status         TEXT NOT NULL DEFAULT 'triggered',
		triggered_at   TIMESTAMPTZ NOT NULL DEFAULT now()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_capture_triggers_round_id ON capture_triggers(round_id);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}

// cmd/api/migrations.go
// Idempotent schema setup, run on every start.

package main

import (
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

var migrations = []struct {
	name string
	stmt string
}{
	{
		name: "users",
		stmt: `
            CREATE TABLE IF NOT EXISTS users (
                id BIGSERIAL PRIMARY KEY,
                email VARCHAR(255) UNIQUE NOT NULL,
                password_hash VARCHAR(255) NOT NULL,
                display_name VARCHAR(50) NOT NULL,
                created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
            )`,
	},
	{
		name: "profiles",
		stmt: `
            CREATE TABLE IF NOT EXISTS profiles (
                user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
                bio TEXT,
                birth_date DATE,
                phone VARCHAR(20),
                is_verified BOOLEAN NOT NULL DEFAULT FALSE,
                is_paused BOOLEAN NOT NULL DEFAULT FALSE,
                pause_reason VARCHAR(50),
                paused_at TIMESTAMPTZ,
                created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
            )`,
	},
	{
		name: "conversations",
		stmt: `
            CREATE TABLE IF NOT EXISTS conversations (
                id BIGSERIAL PRIMARY KEY,
                user1_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                user2_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                status VARCHAR(20) NOT NULL DEFAULT 'active',
                last_message_at TIMESTAMPTZ,
                reminder_sent_at TIMESTAMPTZ,
                close_reason VARCHAR(30),
                closed_by BIGINT REFERENCES users(id),
                created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
                updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
                CONSTRAINT conversations_pair_order CHECK (user1_id < user2_id),
                CONSTRAINT conversations_unique_pair UNIQUE (user1_id, user2_id)
            )`,
	},
	{
		name: "conversations indexes",
		stmt: `
            CREATE INDEX IF NOT EXISTS idx_conversations_user1_status ON conversations(user1_id, status);
            CREATE INDEX IF NOT EXISTS idx_conversations_user2_status ON conversations(user2_id, status);
            CREATE INDEX IF NOT EXISTS idx_conversations_status_last_message ON conversations(status, last_message_at)`,
	},
	{
		name: "messages",
		stmt: `
            CREATE TABLE IF NOT EXISTS messages (
                id BIGSERIAL PRIMARY KEY,
                conversation_id BIGINT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
                sender_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                content TEXT NOT NULL,
                created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_messages_conversation_created ON messages(conversation_id, created_at DESC)`,
	},
	{
		name: "user_response_patterns",
		stmt: `
            CREATE TABLE IF NOT EXISTS user_response_patterns (
                user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
                ghosted_count INT NOT NULL DEFAULT 0,
                graceful_closures INT NOT NULL DEFAULT 0,
                visibility_score DOUBLE PRECISION NOT NULL DEFAULT 1.0,
                last_calculated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_response_patterns_calculated ON user_response_patterns(last_calculated_at DESC)`,
	},
	{
		name: "user_trust_signals",
		stmt: `
            CREATE TABLE IF NOT EXISTS user_trust_signals (
                user_id BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
                shows_up_consistently BOOLEAN NOT NULL DEFAULT FALSE,
                communicates_with_care BOOLEAN NOT NULL DEFAULT FALSE,
                community_trusted BOOLEAN NOT NULL DEFAULT FALSE,
                verified_identity BOOLEAN NOT NULL DEFAULT FALSE,
                thoughtful_closer BOOLEAN NOT NULL DEFAULT FALSE,
                calculated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
            )`,
	},
	{
		name: "notifications",
		stmt: `
            CREATE TABLE IF NOT EXISTS notifications (
                id BIGSERIAL PRIMARY KEY,
                user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
                type VARCHAR(30) NOT NULL,
                title VARCHAR(255) NOT NULL,
                message TEXT NOT NULL,
                related_user_id BIGINT REFERENCES users(id) ON DELETE SET NULL,
                is_read BOOLEAN NOT NULL DEFAULT FALSE,
                read_at TIMESTAMPTZ,
                created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
            );
            CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC);
            CREATE INDEX IF NOT EXISTS idx_notifications_cooldown ON notifications(user_id, related_user_id, type, created_at)`,
	},
}

func runMigrations(db *sqlx.DB) error {
	for _, m := range migrations {
		log.Printf("   - Applying %s...", m.name)
		if _, err := db.Exec(m.stmt); err != nil {
			return fmt.Errorf("migration %q failed: %w", m.name, err)
		}
	}
	return nil
}

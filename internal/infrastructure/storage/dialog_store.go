package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/entity"
	"github.com/yourusername/plastic-advisor-bot/internal/domain/repository"
)

// memoryDialogStore test va Postgres bo'lmagan muhit uchun in-memory store
type memoryDialogStore struct {
	mu   sync.Mutex
	data []entity.DialogRecord
}

// NewMemoryDialogStore in-memory dialog store yaratish
func NewMemoryDialogStore() repository.DialogStore {
	return &memoryDialogStore{data: make([]entity.DialogRecord, 0, 256)}
}

func (m *memoryDialogStore) Save(_ context.Context, rec entity.DialogRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.data = append(m.data, rec)
	return nil
}

func (m *memoryDialogStore) ListByChat(_ context.Context, chatID int64, limit int) ([]entity.DialogRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var res []entity.DialogRecord
	for i := len(m.data) - 1; i >= 0; i-- {
		if m.data[i].ChatID == chatID {
			res = append(res, m.data[i])
			if limit > 0 && len(res) >= limit {
				break
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

func (m *memoryDialogStore) ListByUsername(_ context.Context, username string, limit int) ([]entity.DialogRecord, error) {
	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var res []entity.DialogRecord
	for i := len(m.data) - 1; i >= 0; i-- {
		if strings.ToLower(strings.TrimSpace(m.data[i].Username)) == username {
			res = append(res, m.data[i])
			if limit > 0 && len(res) >= limit {
				break
			}
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

type postgresDialogStore struct {
	db *sql.DB
}

// NewPostgresDialogStore Postgres dialog store yaratish; jadval
// konstruktorda bootstrap qilinadi
func NewPostgresDialogStore(dsn string) (repository.DialogStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	schema := `
CREATE TABLE IF NOT EXISTS dialog_history (
	id TEXT PRIMARY KEY,
	chat_id BIGINT NOT NULL,
	username TEXT,
	role TEXT NOT NULL,
	message TEXT,
	products JSONB,
	created_at TIMESTAMPTZ DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_dialog_history_chat_time ON dialog_history (chat_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_dialog_history_username_time ON dialog_history (lower(username), created_at DESC);
`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create dialog_history table: %w", err)
	}

	return &postgresDialogStore{db: db}, nil
}

func (p *postgresDialogStore) Save(ctx context.Context, rec entity.DialogRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	var products any
	if len(rec.Products) > 0 {
		raw, err := json.Marshal(rec.Products)
		if err != nil {
			return fmt.Errorf("marshal products: %w", err)
		}
		products = raw
	}

	_, err := p.db.ExecContext(ctx, `
	INSERT INTO dialog_history (id, chat_id, username, role, message, products, created_at)
	VALUES ($1,$2,$3,$4,$5,$6,$7)
	`, rec.ID, rec.ChatID, rec.Username, rec.Role, rec.Message, products, rec.CreatedAt)
	return err
}

func (p *postgresDialogStore) ListByChat(ctx context.Context, chatID int64, limit int) ([]entity.DialogRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx, `
	SELECT id, chat_id, username, role, message, products, created_at
	FROM dialog_history
	WHERE chat_id = $1
	ORDER BY created_at DESC
	LIMIT $2`, chatID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDialogRows(rows)
}

func (p *postgresDialogStore) ListByUsername(ctx context.Context, username string, limit int) ([]entity.DialogRecord, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.db.QueryContext(ctx, `
	SELECT id, chat_id, username, role, message, products, created_at
	FROM dialog_history
	WHERE lower(username) = lower($1)
	ORDER BY created_at DESC
	LIMIT $2`, username, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDialogRows(rows)
}

func scanDialogRows(rows *sql.Rows) ([]entity.DialogRecord, error) {
	var res []entity.DialogRecord
	for rows.Next() {
		var rec entity.DialogRecord
		var username sql.NullString
		var message sql.NullString
		var products []byte
		if err := rows.Scan(&rec.ID, &rec.ChatID, &username, &rec.Role, &message, &products, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Username = username.String
		rec.Message = message.String
		if len(products) > 0 {
			if err := json.Unmarshal(products, &rec.Products); err != nil {
				log.Printf("⚠️ Dialog yozuvida products o'qilmadi (id=%s): %v", rec.ID, err)
			}
		}
		res = append(res, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(res, func(i, j int) bool { return res[i].CreatedAt.Before(res[j].CreatedAt) })
	return res, nil
}

// NewDialogStoreFromEnv POSTGRES_DSN bo'lsa Postgres, bo'lmasa yoki
// ulanish xato bo'lsa memory store
func NewDialogStoreFromEnv() repository.DialogStore {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		return NewMemoryDialogStore()
	}
	store, err := NewPostgresDialogStore(dsn)
	if err != nil {
		log.Printf("dialog store: Postgres ulanmadi, memory store ga qaytdi: %v", err)
		return NewMemoryDialogStore()
	}
	return store
}

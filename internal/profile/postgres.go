package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists the state as jsonb documents: one row per
// profile and one per history record. The whole document set is
// rewritten on every save, matching the file driver's whole-state
// persistence model; see db/migrations for the schema.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a postgres-backed persister.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Load reads all profile and history documents. The leaderboard is a
// derived projection and is rebuilt by the caller, not stored.
func (p *PostgresStore) Load(ctx context.Context) (*State, error) {
	state := NewState()

	rows, err := p.pool.Query(ctx, `SELECT user_id, doc FROM profiles`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var userID int64
		var doc []byte
		if err := rows.Scan(&userID, &doc); err != nil {
			return nil, fmt.Errorf("scan profile row: %w", err)
		}
		var prof UserProfile
		if err := json.Unmarshal(doc, &prof); err != nil {
			return nil, fmt.Errorf("parse profile %d: %w", userID, err)
		}
		state.Users[userID] = &prof
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	histRows, err := p.pool.Query(ctx, `SELECT doc FROM game_history ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer histRows.Close()
	for histRows.Next() {
		var doc []byte
		if err := histRows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		var rec GameHistoryRecord
		if err := json.Unmarshal(doc, &rec); err != nil {
			return nil, fmt.Errorf("parse history record: %w", err)
		}
		state.History = append(state.History, rec)
	}
	if err := histRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}

	return state, nil
}

// Save rewrites the document set in one transaction.
func (p *PostgresStore) Save(ctx context.Context, state *State) error {
	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE profiles, game_history`); err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}

	batch := &pgx.Batch{}
	for userID, prof := range state.Users {
		doc, err := json.Marshal(prof)
		if err != nil {
			return fmt.Errorf("marshal profile %d: %w", userID, err)
		}
		batch.Queue(`INSERT INTO profiles (user_id, doc) VALUES ($1, $2)`, userID, doc)
	}
	for _, rec := range state.History {
		doc, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal history record: %w", err)
		}
		batch.Queue(`INSERT INTO game_history (doc) VALUES ($1)`, doc)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("write documents: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit save tx: %w", err)
	}
	return nil
}

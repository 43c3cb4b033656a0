package database

import (
	"database/sql"
	"fmt"
	"time"
)

// GameStateRepository はゲーム状態スナップショット関連のデータベース操作を
// 定義するインターフェースです。スナップショットはJSONで損失なく保存され、
// サーバー再起動後の復元に使用されます。
type GameStateRepository interface {
	// SaveSnapshot はルームの最新スナップショットを保存（upsert）します
	SaveSnapshot(roomID, gameID, phase string, snapshot []byte) error

	// LoadSnapshot はルームの最新スナップショットを取得します。
	// スナップショットが存在しない場合は (nil, nil) を返します
	LoadSnapshot(roomID string) ([]byte, error)

	// DeleteSnapshot はルームのスナップショットを削除します
	DeleteSnapshot(roomID string) error
}

// gameStateRepositoryImpl はGameStateRepositoryインターフェースの実装です。
type gameStateRepositoryImpl struct {
	db *sql.DB
}

// NewGameStateRepository はGameStateRepositoryの新しいインスタンスを作成します。
func NewGameStateRepository(db *sql.DB) GameStateRepository {
	return &gameStateRepositoryImpl{db: db}
}

// SaveSnapshot はルームの最新スナップショットを保存します。
// ルームごとに1行を保持し、既存の行は上書きされます。
func (r *gameStateRepositoryImpl) SaveSnapshot(roomID, gameID, phase string, snapshot []byte) error {
	query := `
		INSERT INTO game_states (room_id, game_id, phase, snapshot, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (room_id)
		DO UPDATE SET game_id = $2, phase = $3, snapshot = $4, updated_at = $5
	`
	_, err := r.db.Exec(query, roomID, gameID, phase, snapshot, time.Now())
	if err != nil {
		return fmt.Errorf("ゲーム状態スナップショットの保存に失敗しました: %w", err)
	}
	return nil
}

// LoadSnapshot はルームの最新スナップショットを取得します。
func (r *gameStateRepositoryImpl) LoadSnapshot(roomID string) ([]byte, error) {
	query := `SELECT snapshot FROM game_states WHERE room_id = $1`

	var snapshot []byte
	err := r.db.QueryRow(query, roomID).Scan(&snapshot)
	if err == sql.ErrNoRows {
		return nil, nil // スナップショットが存在しない場合はnilを返す
	}
	if err != nil {
		return nil, fmt.Errorf("ゲーム状態スナップショットの取得に失敗しました: %w", err)
	}
	return snapshot, nil
}

// DeleteSnapshot はルームのスナップショットを削除します。
func (r *gameStateRepositoryImpl) DeleteSnapshot(roomID string) error {
	_, err := r.db.Exec(`DELETE FROM game_states WHERE room_id = $1`, roomID)
	if err != nil {
		return fmt.Errorf("ゲーム状態スナップショットの削除に失敗しました: %w", err)
	}
	return nil
}

package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models"
)

// ResultRepository はハンド精算結果関連のデータベース操作を定義するインターフェースです。
type ResultRepository interface {
	// SaveHandResults は1ハンドの精算結果（4人分）をトランザクションで保存します
	SaveHandResults(results []models.HandResult) error

	// GetRoomResults はルーム内の全ハンド結果を取得します
	GetRoomResults(roomID string) ([]models.HandResult, error)

	// GetTopPlayers は累計スコア上位N人を取得します（ランキング用）
	GetTopPlayers(limit int) ([]models.HandResultResponse, error)

	// GetPlayerRanking は指定したユーザーの現在のランキング順位を取得します
	GetPlayerRanking(userID string) (*models.HandResultResponse, error)
}

// resultRepositoryImpl はResultRepositoryインターフェースの実装です。
type resultRepositoryImpl struct {
	db *sql.DB
}

// NewResultRepository はResultRepositoryの新しいインスタンスを作成します。
func NewResultRepository(db *sql.DB) ResultRepository {
	return &resultRepositoryImpl{db: db}
}

// SaveHandResults は1ハンドの精算結果をトランザクションで保存します。
// 4レコードすべての挿入が成功した場合のみコミットされます。
func (r *resultRepositoryImpl) SaveHandResults(results []models.HandResult) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗しました: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO hand_results (room_id, game_id, user_id, position, score_delta, winner_team, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`)
	if err != nil {
		return fmt.Errorf("INSERT文の準備に失敗しました: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, result := range results {
		_, err = stmt.Exec(result.RoomID, result.GameID, result.UserID, result.Position, result.ScoreDelta, result.WinnerTeam, now)
		if err != nil {
			return fmt.Errorf("ハンド結果の挿入に失敗しました: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗しました: %w", err)
	}
	return nil
}

// GetRoomResults はルーム内の全ハンド結果を時系列で取得します。
func (r *resultRepositoryImpl) GetRoomResults(roomID string) ([]models.HandResult, error) {
	query := `
		SELECT id, room_id, game_id, user_id, position, score_delta, winner_team, created_at
		FROM hand_results
		WHERE room_id = $1
		ORDER BY created_at ASC, position ASC
	`
	rows, err := r.db.Query(query, roomID)
	if err != nil {
		return nil, fmt.Errorf("ハンド結果の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []models.HandResult
	for rows.Next() {
		var result models.HandResult
		err := rows.Scan(&result.ID, &result.RoomID, &result.GameID, &result.UserID, &result.Position, &result.ScoreDelta, &result.WinnerTeam, &result.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("ハンド結果データのスキャンに失敗しました: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ハンド結果取得中にエラーが発生しました: %w", err)
	}

	return results, nil
}

// GetTopPlayers は累計スコア上位N人を取得します（ランキング用）。
func (r *resultRepositoryImpl) GetTopPlayers(limit int) ([]models.HandResultResponse, error) {
	query := `
		SELECT
			h.user_id,
			COALESCE(u.user_name, 'ゲスト') AS name,
			SUM(h.score_delta) AS total_score,
			COUNT(*) AS hands_count,
			MAX(h.created_at) AS last_played,
			ROW_NUMBER() OVER (ORDER BY SUM(h.score_delta) DESC, MAX(h.created_at) ASC) AS rank
		FROM hand_results h
		LEFT JOIN users u ON u.id = h.user_id
		GROUP BY h.user_id, u.user_name
		ORDER BY total_score DESC, last_played ASC
		LIMIT $1
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("ランキングの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var results []models.HandResultResponse
	for rows.Next() {
		var result models.HandResultResponse
		err := rows.Scan(&result.UserID, &result.Name, &result.TotalScore, &result.HandsCount, &result.LastPlayed, &result.Rank)
		if err != nil {
			return nil, fmt.Errorf("ランキングデータのスキャンに失敗しました: %w", err)
		}
		results = append(results, result)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("ランキング取得中にエラーが発生しました: %w", err)
	}

	return results, nil
}

// GetPlayerRanking は指定したユーザーの現在のランキング順位を取得します。
// ユーザーのハンド結果が存在しない場合は (nil, nil) を返します。
func (r *resultRepositoryImpl) GetPlayerRanking(userID string) (*models.HandResultResponse, error) {
	query := `
		SELECT user_id, name, total_score, hands_count, last_played, rank
		FROM (
			SELECT
				h.user_id,
				COALESCE(u.user_name, 'ゲスト') AS name,
				SUM(h.score_delta) AS total_score,
				COUNT(*) AS hands_count,
				MAX(h.created_at) AS last_played,
				ROW_NUMBER() OVER (ORDER BY SUM(h.score_delta) DESC, MAX(h.created_at) ASC) AS rank
			FROM hand_results h
			LEFT JOIN users u ON u.id = h.user_id
			GROUP BY h.user_id, u.user_name
		) ranked
		WHERE user_id = $1
	`

	var result models.HandResultResponse
	err := r.db.QueryRow(query, userID).Scan(&result.UserID, &result.Name, &result.TotalScore, &result.HandsCount, &result.LastPlayed, &result.Rank)
	if err == sql.ErrNoRows {
		return nil, nil // ユーザーの結果が存在しない場合はnilを返す
	}
	if err != nil {
		return nil, fmt.Errorf("ユーザーランキング順位の取得に失敗しました: %w", err)
	}

	return &result, nil
}

package models

import (
	"time"
)

// HandResult はhand_resultsテーブルのレコードに対応する構造体です。
// 1ハンドの精算でプレイヤー1人につき1レコードが作成されます。
// ScoreDeltaはゼロサム（1ハンドの4レコードの合計は常に0）です。
type HandResult struct {
	ID         int64     `json:"id"`
	RoomID     string    `json:"room_id"` // UUID
	GameID     string    `json:"game_id"` // UUID
	UserID     string    `json:"user_id"` // UUID
	Position   int       `json:"position"`
	ScoreDelta int       `json:"score_delta"` // 基準50点からの増減
	WinnerTeam string    `json:"winner_team"` // "declarer_team" / "opponent_team"
	CreatedAt  time.Time `json:"created_at"`
}

// HandResultResponse はランキングAPIのレスポンス用の構造体です。
type HandResultResponse struct {
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	TotalScore int       `json:"total_score"`
	HandsCount int       `json:"hands_count"`
	LastPlayed time.Time `json:"last_played"`
	Rank       int       `json:"rank"` // ランキング順位
}

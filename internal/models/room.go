package models

import (
	"time"
)

// Room はroomsテーブルのレコードに対応する構造体です。
// 1つのルームは4人のプレイヤーと1つのゲームを持ちます。
type Room struct {
	ID        string    `json:"id"` // UUID
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ルームのステータス値です。
const (
	RoomStatusWaiting  = "waiting"
	RoomStatusPlaying  = "playing"
	RoomStatusFinished = "finished"
)

// RoomPlayer はroom_playersテーブルのレコードに対応する構造体です。
type RoomPlayer struct {
	RoomID   string    `json:"room_id"`
	UserID   string    `json:"user_id"` // UUID
	Name     string    `json:"name"`
	Position int       `json:"position"` // 0-3
	JoinedAt time.Time `json:"joined_at"`
}

// RoomResponse はルーム一覧・詳細APIのレスポンス用の構造体です。
type RoomResponse struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

package database

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQLドライバー
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models"
)

// DatabaseService provides methods for interacting with the database.
type DatabaseService struct {
	DB *sql.DB
}

// NewDatabaseService creates a new instance of DatabaseService and establishes a database connection.
func NewDatabaseService(databaseURL string) (*DatabaseService, error) {
	log.Printf("データベース接続を試行中: URLの最初の50文字: %s...", databaseURL[:min(len(databaseURL), 50)])
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		log.Printf("DatabaseService Error: sql.Openに失敗しました: %v", err)
		return nil, fmt.Errorf("データベースへの接続オブジェクト作成に失敗しました: %w", err)
	}

	// データベース接続の確認 (Ping)
	err = db.Ping()
	if err != nil {
		log.Printf("DatabaseService Error: db.Pingに失敗しました: %v", err)
		return nil, fmt.Errorf("データベースのPingに失敗しました。接続情報やネットワークを確認してください: %w", err)
	}

	log.Println("データベースに正常に接続しました。")
	return &DatabaseService{DB: db}, nil
}

// min helper function for logging
func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// CreateRoom は新しいルームのレコードを作成します。
//
// Parameters:
//   roomID : 作成するルームのUUID
// Returns:
//   error : エラーが発生した場合
func (s *DatabaseService) CreateRoom(roomID string) error {
	now := time.Now()
	query := `INSERT INTO rooms (id, status, created_at, updated_at) VALUES ($1, $2, $3, $3)`
	_, err := s.DB.Exec(query, roomID, models.RoomStatusWaiting, now)
	if err != nil {
		return fmt.Errorf("ルームレコードの作成に失敗しました: %w", err)
	}
	log.Printf("DatabaseService Info: ルーム %s を作成しました", roomID)
	return nil
}

// UpdateRoomStatus はルームのステータスを更新します。
func (s *DatabaseService) UpdateRoomStatus(roomID, status string) error {
	query := `UPDATE rooms SET status = $2, updated_at = $3 WHERE id = $1`
	_, err := s.DB.Exec(query, roomID, status, time.Now())
	if err != nil {
		return fmt.Errorf("ルームステータスの更新に失敗しました: %w", err)
	}
	return nil
}

// AddRoomPlayer はルームにプレイヤーのレコードを追加します。
func (s *DatabaseService) AddRoomPlayer(roomID, userID, name string, position int) error {
	query := `INSERT INTO room_players (room_id, user_id, name, position, joined_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := s.DB.Exec(query, roomID, userID, name, position, time.Now())
	if err != nil {
		return fmt.Errorf("ルームプレイヤーの追加に失敗しました: %w", err)
	}
	return nil
}

// GetRoomPlayers はルームの全プレイヤーを席順で取得します。
func (s *DatabaseService) GetRoomPlayers(roomID string) ([]models.RoomPlayer, error) {
	query := `SELECT room_id, user_id, name, position, joined_at FROM room_players WHERE room_id = $1 ORDER BY position ASC`
	rows, err := s.DB.Query(query, roomID)
	if err != nil {
		return nil, fmt.Errorf("ルームプレイヤーの取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var players []models.RoomPlayer
	for rows.Next() {
		var p models.RoomPlayer
		if err := rows.Scan(&p.RoomID, &p.UserID, &p.Name, &p.Position, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("ルームプレイヤーのスキャンに失敗しました: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ルームプレイヤーの取得中にエラーが発生しました: %w", err)
	}
	return players, nil
}

// ListWaitingRooms は参加待ちのルームの一覧を取得します。
func (s *DatabaseService) ListWaitingRooms() ([]models.RoomResponse, error) {
	query := `
		SELECT r.id, r.status, COUNT(p.user_id) AS player_count, r.created_at
		FROM rooms r
		LEFT JOIN room_players p ON p.room_id = r.id
		WHERE r.status = $1
		GROUP BY r.id, r.status, r.created_at
		ORDER BY r.created_at DESC
	`
	rows, err := s.DB.Query(query, models.RoomStatusWaiting)
	if err != nil {
		return nil, fmt.Errorf("ルーム一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var rooms []models.RoomResponse
	for rows.Next() {
		var r models.RoomResponse
		if err := rows.Scan(&r.ID, &r.Status, &r.PlayerCount, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("ルームデータのスキャンに失敗しました: %w", err)
		}
		rooms = append(rooms, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ルーム一覧の取得中にエラーが発生しました: %w", err)
	}
	return rooms, nil
}

// GetUserDisplayNameByUserID fetches the display name (user_name) for a given user ID (UUID).
// If the user doesn't exist or user_name is empty, returns "ゲスト".
func (s *DatabaseService) GetUserDisplayNameByUserID(userID string) string {
	var userName sql.NullString
	// users テーブルから userID に紐づく user_name を取得するクエリ
	query := `SELECT user_name FROM users WHERE id = $1`
	err := s.DB.QueryRow(query, userID).Scan(&userName)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Printf("DatabaseService Info: ユーザーID %s が見つからないため、「ゲスト」を返します", userID)
			return "ゲスト"
		}
		log.Printf("DatabaseService Error: ユーザー名の取得に失敗しました: %v, 「ゲスト」を返します", err)
		return "ゲスト"
	}

	// user_nameがNULLまたは空文字列の場合も「ゲスト」を返す
	if !userName.Valid || userName.String == "" {
		return "ゲスト"
	}

	return userName.String
}

package tarokk

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket" // WebSocketライブラリのインポート

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/database" // データベースサービスをインポート
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models"
	tarokkmodels "github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/models/tarokk"
)

// Client はWebSocket接続を持つ単一のクライアントを表します。
type Client struct {
	UserID string          // このクライアントに紐づくユーザーのID
	Conn   *websocket.Conn // クライアントとの実際のWebSocketコネクション
	Send   chan []byte     // クライアントへメッセージを送信するためのバッファ付きチャネル
	RoomID string          // このクライアントが現在参加しているルームのID
	closed bool            // チャネルが閉じられたかどうかのフラグ
	mu     sync.Mutex      // closedフラグ保護用
}

// SafeSend は安全にチャネルにメッセージを送信します（closedチェック付き）
func (c *Client) SafeSend(message []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return false // 既に閉じられている
	}

	select {
	case c.Send <- message:
		return true // 送信成功
	default:
		return false // チャネルがフル
	}
}

// SafeClose は安全にチャネルを閉じます
func (c *Client) SafeClose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.Send)
		c.closed = true
	}
}

// Message はサーバーからクライアントへ送信するWebSocketメッセージです。
type Message struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// CommandEvent はクライアントからのゲームコマンドです。
// UserIDとRoomIDは受信時にサーバー側で上書きされます。
type CommandEvent struct {
	UserID string          `json:"-"`
	RoomID string          `json:"-"`
	Type   string          `json:"type"`
	Data   json.RawMessage `json:"data"`
}

// GameRoom は1テーブル分のアクティブなゲームを表します。
type GameRoom struct {
	ID        string     `json:"id"`
	State     *GameState `json:"state"`
	CreatedAt time.Time  `json:"created_at"`

	// mu はStateへのすべてのアクセスを保護します。Runループのコマンド処理と
	// REST経由の参加・参照が並行するためです。
	mu sync.Mutex
}

// RoomStore はSessionManagerが利用するルーム・プレイヤーの永続化操作です。
// 本番では *database.DatabaseService が実装します。
type RoomStore interface {
	CreateRoom(roomID string) error
	UpdateRoomStatus(roomID, status string) error
	AddRoomPlayer(roomID, userID, name string, position int) error
	GetRoomPlayers(roomID string) ([]models.RoomPlayer, error)
	GetUserDisplayNameByUserID(userID string) string
}

// SessionManager はゲームルームとWebSocketクライアント接続の全体を管理します。
// これはアプリケーション内でシングルトンとして動作することが想定されます。
// すべてのゲームコマンドは commands チャネル経由でメインループに集約され、
// 直列に処理されます。同一ルームへの同時コマンドはこの直列化で順序付けられます。
type SessionManager struct {
	rooms      map[string]*GameRoom // roomID -> GameRoom のマップ (アクティブなルームを保持)
	clients    map[string]*Client   // userID -> Client のマップ (現在接続中の全WebSocketクライアント)
	register   chan *Client         // 新しいクライアント接続の登録リクエスト用チャネル
	unregister chan *Client         // クライアント切断の登録解除リクエスト用チャネル
	commands   chan CommandEvent    // クライアントからのゲームコマンドを受け取るチャネル
	quit       chan struct{}        // シャットダウン用チャネル
	mu         sync.RWMutex         // rooms と clients マップへのアクセスを保護するためのRWMutex

	dbService  RoomStore                    // ルーム・プレイヤーの永続化用ストア
	stateRepo  database.GameStateRepository // ゲーム状態スナップショットの永続化用
	resultRepo database.ResultRepository    // ハンド精算結果の永続化用
}

// NewSessionManager は新しい SessionManager インスタンスを作成し、そのメインイベントループをバックグラウンドで開始します。
//
// Parameters:
//   db         : ルーム永続化ストア
//   stateRepo  : ゲーム状態スナップショットリポジトリ
//   resultRepo : ハンド結果リポジトリ
// Returns:
//   *SessionManager: 初期化されたセッションマネージャーのポインタ
func NewSessionManager(db RoomStore, stateRepo database.GameStateRepository, resultRepo database.ResultRepository) *SessionManager {
	sm := &SessionManager{
		rooms:      make(map[string]*GameRoom),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		commands:   make(chan CommandEvent, 512), // コマンドのキューイング用
		quit:       make(chan struct{}),
		dbService:  db,
		stateRepo:  stateRepo,
		resultRepo: resultRepo,
	}
	go sm.Run() // SessionManager のメインイベントループをゴルーチンで開始
	return sm
}

// Run は SessionManager のメインイベントループです。
// クライアントの登録/解除とゲームコマンドをすべてこのゴルーチンで処理するため、
// ゲーム状態への適用は常に直列です。
func (sm *SessionManager) Run() {
	for {
		select {
		case client := <-sm.register:
			// 新しいクライアントの登録処理
			sm.mu.Lock()
			sm.clients[client.UserID] = client
			sm.mu.Unlock()
			log.Printf("[SessionManager] Client registered: %s (Room: %s)", client.UserID, client.RoomID)

			if room, ok := sm.GetRoom(client.RoomID); ok {
				room.mu.Lock()
				if p := room.State.GetPlayerByID(client.UserID); p != nil {
					p.IsConnected = true
				}
				room.mu.Unlock()
				sm.broadcastGameState(room)
				sm.sendYourTurn(room)
			}

		case client := <-sm.unregister:
			// クライアントの登録解除処理
			sm.mu.Lock()
			registeredClient, ok := sm.clients[client.UserID]
			if ok && registeredClient == client {
				registeredClient.SafeClose()
				delete(sm.clients, client.UserID)
				log.Printf("[SessionManager] Client unregistered: %s (Room: %s)", client.UserID, client.RoomID)
			}
			sm.mu.Unlock()

			// ゲームは切断では終了させません。席は保持され、再接続で復帰できます。
			if ok && registeredClient == client {
				if room, roomOk := sm.GetRoom(client.RoomID); roomOk {
					room.mu.Lock()
					if p := room.State.GetPlayerByID(client.UserID); p != nil {
						p.IsConnected = false
					}
					room.mu.Unlock()
					sm.broadcastGameState(room)
				}
			}

		case event := <-sm.commands:
			sm.handleCommand(event)

		case <-sm.quit:
			// シャットダウンシグナルを受信したらメインループを終了
			log.Printf("[SessionManager] シャットダウンシグナルを受信、メインループを終了します")
			return
		}
	}
}

// CreateRoom は新しいゲームルームを作成し、作成者を最初のプレイヤーとして着席させます。
//
// Parameters:
//   creatorID  : 作成者のユーザーID
//   playerName : 表示名（空の場合はDBの表示名を使用）
// Returns:
//   string: 作成されたルームのID
//   error : エラーが発生した場合
func (sm *SessionManager) CreateRoom(creatorID, playerName string) (string, error) {
	sm.mu.Lock()

	roomID := uuid.New().String() // 新しいルームIDを生成

	state := NewGameState()
	if playerName == "" {
		playerName = sm.dbService.GetUserDisplayNameByUserID(creatorID)
	}
	if err := state.AddPlayer(tarokkmodels.NewPlayer(creatorID, playerName, 0)); err != nil {
		sm.mu.Unlock()
		return "", fmt.Errorf("failed to seat creator: %w", err)
	}

	room := &GameRoom{
		ID:        roomID,
		State:     state,
		CreatedAt: time.Now(),
	}
	sm.rooms[roomID] = room
	sm.mu.Unlock()

	// データベースにルームを記録します。記録失敗はルーム作成自体を妨げません。
	if err := sm.dbService.CreateRoom(roomID); err != nil {
		log.Printf("[SessionManager] Failed to persist room %s: %v", roomID, err)
	}
	if err := sm.dbService.AddRoomPlayer(roomID, creatorID, playerName, 0); err != nil {
		log.Printf("[SessionManager] Failed to persist room player %s: %v", creatorID, err)
	}

	log.Printf("[SessionManager] Created new game room: %s for player %s", roomID, creatorID)
	sm.broadcastGameState(room)
	return roomID, nil
}

// JoinRoom は既存のゲームルームにプレイヤーを参加させます。
// 満席（4人）のルーム、開始済みのルーム、重複参加は拒否されます。
//
// Parameters:
//   roomID     : 参加するルームのID
//   userID     : 参加者のユーザーID
//   playerName : 表示名（空の場合はDBの表示名を使用）
// Returns:
//   error : エラーが発生した場合
func (sm *SessionManager) JoinRoom(roomID, userID, playerName string) error {
	room, ok := sm.GetRoom(roomID)
	if !ok {
		log.Printf("[SessionManager] Room %s not found for player %s", roomID, userID)
		return errors.New("room not found")
	}

	if playerName == "" {
		playerName = sm.dbService.GetUserDisplayNameByUserID(userID)
	}

	room.mu.Lock()

	if room.State.Phase != PhaseWaiting {
		room.mu.Unlock()
		log.Printf("[SessionManager] Room %s is not waiting (phase: %s) for player %s", roomID, room.State.Phase, userID)
		return errors.New("room is not waiting for players")
	}
	if room.State.GetPlayerByID(userID) != nil {
		room.mu.Unlock()
		return errors.New("already joined this room")
	}

	player := tarokkmodels.NewPlayer(userID, playerName, len(room.State.Players))
	if err := room.State.AddPlayer(player); err != nil {
		room.mu.Unlock()
		return errors.New("room is already full")
	}
	position := player.Position
	room.mu.Unlock()

	if err := sm.dbService.AddRoomPlayer(roomID, userID, playerName, position); err != nil {
		log.Printf("[SessionManager] Failed to persist room player %s: %v", userID, err)
	}

	log.Printf("[SessionManager] Player %s joined room %s at position %d", userID, roomID, position)
	sm.broadcastGameState(room)
	return nil
}

// GetRoom は指定されたルームIDのゲームルームを取得します。
// メモリ上に存在しない場合はデータベースのスナップショットからの復元を試みます
// （サーバー再起動後の再接続対応）。
func (sm *SessionManager) GetRoom(roomID string) (*GameRoom, bool) {
	sm.mu.RLock()
	room, ok := sm.rooms[roomID]
	sm.mu.RUnlock()
	if ok {
		return room, true
	}

	snapshot, err := sm.stateRepo.LoadSnapshot(roomID)
	if err != nil {
		log.Printf("[SessionManager] Failed to load snapshot for room %s: %v", roomID, err)
		return nil, false
	}
	if snapshot == nil {
		return nil, false
	}

	state, err := RestoreSnapshot(snapshot)
	if err != nil {
		log.Printf("[SessionManager] Failed to restore snapshot for room %s: %v", roomID, err)
		return nil, false
	}
	// 復元直後は誰も接続していません。
	for _, p := range state.Players {
		p.IsConnected = false
	}

	restored := &GameRoom{ID: roomID, State: state, CreatedAt: time.Now()}
	sm.mu.Lock()
	// ダブルチェック: 競合して先に復元されたルームがあればそちらを使います。
	if existing, exists := sm.rooms[roomID]; exists {
		sm.mu.Unlock()
		return existing, true
	}
	sm.rooms[roomID] = restored
	sm.mu.Unlock()

	log.Printf("[SessionManager] Restored room %s from snapshot (phase: %s)", roomID, state.Phase)
	return restored, true
}

// RoomView はルームの公開状態（全手札・タロン秘匿）を返します。
// REST経由のステータス参照はこのメソッドを使い、Stateに直接触れません。
func (sm *SessionManager) RoomView(roomID string) (GameStateView, bool) {
	room, ok := sm.GetRoom(roomID)
	if !ok {
		return GameStateView{}, false
	}
	room.mu.Lock()
	defer room.mu.Unlock()
	return room.State.ObserverView(""), true
}

// SeatedPlayers はルームに着席したプレイヤーの永続化レコードを席順で返します。
func (sm *SessionManager) SeatedPlayers(roomID string) ([]models.RoomPlayer, error) {
	return sm.dbService.GetRoomPlayers(roomID)
}

// RegisterClient は新しいWebSocketクライアントをSessionManagerに登録します。
// クライアントはルームのプレイヤーとして着席済みである必要があります。
//
// Parameters:
//   roomID : クライアントが参加するルームのID
//   userID : クライアントのユーザーID
//   conn   : WebSocketコネクション
// Returns:
//   error: エラーが発生した場合
func (sm *SessionManager) RegisterClient(roomID, userID string, conn *websocket.Conn) error {
	log.Printf("[SessionManager] RegisterClient called for user %s in room %s", userID, roomID)

	room, ok := sm.GetRoom(roomID)
	if !ok {
		return errors.New("room not found")
	}
	room.mu.Lock()
	seated := room.State.GetPlayerByID(userID) != nil
	room.mu.Unlock()
	if !seated {
		return errors.New("user is not seated in this room")
	}

	// 既存の接続があれば先にクリーンアップ（再接続対応）
	sm.mu.Lock()
	if existingClient, exists := sm.clients[userID]; exists {
		log.Printf("[SessionManager] Replacing existing connection for user %s", userID)
		if existingClient.Conn != nil {
			existingClient.Conn.Close()
		}
		existingClient.SafeClose()
		delete(sm.clients, userID)
	}

	// 新しいクライアントを作成
	client := &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 512),
		RoomID: roomID,
	}
	sm.mu.Unlock()

	// WebSocket接続の基本設定
	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(300 * time.Second)) // 5分のタイムアウト
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(300 * time.Second)) // Pong受信時にタイムアウトリセット
		return nil
	})

	// readPump と writePump を別々のゴルーチンで開始
	go sm.readPump(client)
	go client.writePump()

	// クライアント登録イベントを SessionManager に送信
	sm.register <- client

	log.Printf("[SessionManager] Client %s registered for room %s", userID, roomID)
	return nil
}

// readPump はクライアントからのWebSocketメッセージを読み込み、 commands チャネルに送信します。
func (sm *SessionManager) readPump(client *Client) {
	defer func() {
		// パニック回復処理
		if r := recover(); r != nil {
			log.Printf("[SessionManager] Panic in readPump for user %s: %v", client.UserID, r)
		}

		// クライアントの切断処理
		log.Printf("[SessionManager] Client %s disconnecting from room %s", client.UserID, client.RoomID)
		sm.unregister <- client // クライアントが切断されたら登録解除を通知

		if client.Conn != nil {
			if err := client.Conn.Close(); err != nil {
				log.Printf("[SessionManager] Error closing WebSocket connection for user %s: %v", client.UserID, err)
			}
		}
	}()

	for {
		if client.Conn == nil {
			log.Printf("[SessionManager] WebSocket connection is nil for user %s", client.UserID)
			break
		}

		// メッセージタイプはテキストメッセージを想定
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[SessionManager] WebSocket unexpected close error for user %s: %v", client.UserID, err)
			} else {
				log.Printf("[SessionManager] WebSocket closed for user %s: %v", client.UserID, err)
			}
			return
		}

		if len(message) == 0 {
			continue
		}

		// 受信したJSONメッセージを CommandEvent 構造体にパース
		var event CommandEvent
		if err := json.Unmarshal(message, &event); err != nil {
			log.Printf("[SessionManager] Failed to unmarshal command from %s: %v, message: %s", client.UserID, err, message)
			continue // パース失敗時はこのメッセージをスキップ
		}
		// UserIDとRoomIDはクライアント申告を信用せず接続情報で上書き（セキュリティのため）
		event.UserID = client.UserID
		event.RoomID = client.RoomID

		// ゲームコマンドを SessionManager の commands チャネルに送信
		select {
		case sm.commands <- event:
			// 正常に送信
		default:
			log.Printf("[SessionManager] Commands channel is full, dropping message from user %s", client.UserID)
		}
	}
}

// writePump は Client の Send チャネルからのメッセージをWebSocketコネクションに書き込みます。
// クライアントごとにこのゴルーチンが動作します。
func (c *Client) writePump() {
	defer func() {
		// パニック回復処理
		if r := recover(); r != nil {
			log.Printf("[Client] Panic in writePump for user %s: %v", c.UserID, r)
		}

		if c.Conn != nil {
			if err := c.Conn.Close(); err != nil {
				log.Printf("[Client] Error closing WebSocket connection for user %s: %v", c.UserID, err)
			}
		}
		log.Printf("[Client] WritePump ended for user %s", c.UserID)
	}()

	// ピング送信のタイマー設定
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))

			if !ok {
				// マネージャーがチャネルを閉じた場合 (クライアントの登録解除時など)
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Printf("[Client] Error writing message for user %s: %v", c.UserID, err)
				return
			}

		case <-ticker.C:
			// ピングメッセージを定期的に送信してコネクションの生存確認
			c.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Printf("[Client] Error sending ping for user %s: %v", c.UserID, err)
				return
			}
		}
	}
}

// コマンドペイロードの構造体群です。readyはペイロードを持ちません。
type placeBidPayload struct {
	BidType tarokkmodels.BidType `json:"bid_type"`
}

type discardPayload struct {
	CardIDs []string `json:"card_ids"`
}

type callPartnerPayload struct {
	TarokkRank string `json:"tarokk_rank"`
}

type announcementPayload struct {
	Announcements []tarokkmodels.AnnouncementType `json:"announcements"`
	Announced     bool                            `json:"announced"`
}

type contraPayload struct {
	AnnouncementType tarokkmodels.AnnouncementType `json:"announcement_type"`
}

type playCardPayload struct {
	CardID string `json:"card_id"`
}

// handleCommand は1つのゲームコマンドをゲーム状態に適用します。
// Runループからのみ呼ばれるため、状態への適用は直列です。
func (sm *SessionManager) handleCommand(event CommandEvent) {
	room, ok := sm.GetRoom(event.RoomID)
	if !ok {
		log.Printf("[SessionManager] Received command %s for non-existent room %s", event.Type, event.RoomID)
		sm.sendError(event.UserID, &RuleError{Code: ErrNotFound, Message: "room not found"})
		return
	}

	// コマンドの適用中はルームをロックし、REST経由の参加・参照と競合しないようにします。
	room.mu.Lock()

	player := room.State.GetPlayerByID(event.UserID)
	if player == nil {
		room.mu.Unlock()
		sm.sendError(event.UserID, &RuleError{Code: ErrNotFound, Message: "player not seated in this room"})
		return
	}

	var err error
	switch event.Type {
	case "ready":
		err = sm.handleReady(room, player)
	case "place_bid":
		err = sm.handlePlaceBid(room, player, event.Data)
	case "discard_cards":
		err = sm.handleDiscard(room, player, event.Data)
	case "call_partner":
		err = sm.handleCallPartner(room, player, event.Data)
	case "make_announcement":
		err = sm.handleMakeAnnouncement(room, player, event.Data)
	case "pass_announcement":
		err = sm.handlePassAnnouncement(room, player)
	case "contra_announcement":
		err = sm.handleContra(room, player, event.Data)
	case "recontra_announcement":
		err = sm.handleRecontra(room, player, event.Data)
	case "play_card":
		err = sm.handlePlayCard(room, player, event.Data)
	default:
		err = &RuleError{Code: ErrRuleViolation, Message: fmt.Sprintf("unknown command: %s", event.Type)}
	}

	if err != nil {
		room.mu.Unlock()
		log.Printf("[SessionManager] Command %s from %s rejected: %v", event.Type, event.UserID, err)
		sm.sendError(event.UserID, err)
		return
	}

	// 成功したコマンドの後は必ずスナップショットを保存し、最新状態を配信します。
	sm.persistSnapshot(room)
	room.mu.Unlock()
	sm.broadcastGameState(room)
	sm.sendYourTurn(room)
}

// handleReady はプレイヤーのレディを処理し、4人全員が揃ったらハンドを開始します。
// ハンド終了後のレディは次のハンドの開始（ディーラーは次に回る）を意味します。
func (sm *SessionManager) handleReady(room *GameRoom, player *tarokkmodels.Player) error {
	state := room.State
	if state.Phase != PhaseWaiting && state.Phase != PhaseHandEnd {
		return &RuleError{Code: ErrWrongPhase, Message: fmt.Sprintf("cannot ready during phase %s", state.Phase)}
	}

	player.IsReady = true
	log.Printf("[SessionManager] Player %s is ready in room %s", player.ID, room.ID)

	if !state.AllPlayersReady() {
		return nil
	}

	if state.Phase == PhaseHandEnd {
		// 次のハンド。ディーラーは反時計回りで次に回ります。
		state.DealerPosition = state.NextPosition(state.DealerPosition)
	}

	if err := state.StartDealing(); err != nil {
		return err
	}
	state.StartBidding()
	for _, p := range state.Players {
		p.IsReady = false
	}

	if err := sm.dbService.UpdateRoomStatus(room.ID, models.RoomStatusPlaying); err != nil {
		log.Printf("[SessionManager] Failed to update room status for %s: %v", room.ID, err)
	}

	log.Printf("[SessionManager] Hand started in room %s (game: %s, dealer: %d)", room.ID, state.GameID, state.DealerPosition)
	sm.broadcastToRoom(room.ID, Message{Type: "game_started", Data: map[string]any{
		"game_id":         state.GameID,
		"dealer_position": state.DealerPosition,
	}})
	return nil
}

// handlePlaceBid はビッドコマンドを処理します。
func (sm *SessionManager) handlePlaceBid(room *GameRoom, player *tarokkmodels.Player, data json.RawMessage) error {
	var payload placeBidPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &RuleError{Code: ErrRuleViolation, Message: "invalid place_bid payload"}
	}

	result, err := room.State.PlaceBid(player.Position, payload.BidType)
	if err != nil {
		return err
	}

	sm.broadcastToRoom(room.ID, Message{Type: "bid_placed", Data: map[string]any{
		"position":   result.Bid.PlayerPosition,
		"bid_type":   result.Bid.Type,
		"game_value": result.Bid.GameValue,
		"redealt":    result.Redealt,
	}})

	if result.Redealt {
		log.Printf("[SessionManager] All players passed in room %s, hand redealt (dealer: %d)", room.ID, room.State.DealerPosition)
		sm.broadcastToRoom(room.ID, Message{Type: "game_started", Data: map[string]any{
			"game_id":         room.State.GameID,
			"dealer_position": room.State.DealerPosition,
		}})
		return nil
	}

	if result.AuctionComplete {
		state := room.State
		sm.broadcastToRoom(room.ID, Message{Type: "bidding_complete", Data: map[string]any{
			"declarer_position": *state.DeclarerPosition,
			"winning_bid":       state.WinningBid,
		}})

		// タロン分配は宣言者決定と同時に自動で行われます。
		distribution, err := state.DistributeTalon()
		if err != nil {
			return err
		}
		counts := make(map[int]int, len(distribution))
		for pos, cards := range distribution {
			counts[pos] = len(cards)
		}
		log.Printf("[SessionManager] Talon distributed in room %s: %v", room.ID, counts)
		sm.broadcastToRoom(room.ID, Message{Type: "talon_distributed", Data: map[string]any{
			"card_counts": counts,
		}})
	}
	return nil
}

// handleDiscard は捨て札コマンドを処理します。
// 捨てたタロックの枚数のみ全員に公開されます。
func (sm *SessionManager) handleDiscard(room *GameRoom, player *tarokkmodels.Player, data json.RawMessage) error {
	var payload discardPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &RuleError{Code: ErrRuleViolation, Message: "invalid discard_cards payload"}
	}

	result, err := room.State.DiscardCards(player.Position, payload.CardIDs)
	if err != nil {
		return err
	}

	sm.broadcastToRoom(room.ID, Message{Type: "player_discarded", Data: map[string]any{
		"position":          player.Position,
		"count":             len(result.Discarded),
		"tarokks_discarded": result.TarokksDiscarded,
		"phase_complete":    result.PhaseComplete,
	}})
	return nil
}

// handleCallPartner はパートナーコールコマンドを処理します。
// 指名されたランクだけが公開され、所持者は公開されません。
func (sm *SessionManager) handleCallPartner(room *GameRoom, player *tarokkmodels.Player, data json.RawMessage) error {
	var payload callPartnerPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &RuleError{Code: ErrRuleViolation, Message: "invalid call_partner payload"}
	}

	if err := room.State.CallPartner(player.Position, payload.TarokkRank); err != nil {
		return err
	}

	log.Printf("[SessionManager] Partner called in room %s: tarokk %s", room.ID, payload.TarokkRank)
	sm.broadcastToRoom(room.ID, Message{Type: "partner_called", Data: map[string]any{
		"tarokk_rank": payload.TarokkRank,
	}})
	return nil
}

// handleMakeAnnouncement は宣言コマンドを処理します。1手番で複数の宣言が可能です。
func (sm *SessionManager) handleMakeAnnouncement(room *GameRoom, player *tarokkmodels.Player, data json.RawMessage) error {
	var payload announcementPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &RuleError{Code: ErrRuleViolation, Message: "invalid make_announcement payload"}
	}

	result, err := room.State.MakeAnnouncements(player.Position, payload.Announcements, payload.Announced)
	if err != nil {
		return err
	}

	sm.broadcastToRoom(room.ID, Message{Type: "announcement_made", Data: map[string]any{
		"position":      player.Position,
		"announcements": result.Made,
	}})
	if result.PhaseComplete {
		sm.announcePlayStart(room)
	}
	return nil
}

// handlePassAnnouncement は宣言のパスを処理します。
func (sm *SessionManager) handlePassAnnouncement(room *GameRoom, player *tarokkmodels.Player) error {
	complete, err := room.State.PassAnnouncement(player.Position)
	if err != nil {
		return err
	}
	if complete {
		sm.announcePlayStart(room)
	}
	return nil
}

// handleContra はコントラコマンドを処理します。
func (sm *SessionManager) handleContra(room *GameRoom, player *tarokkmodels.Player, data json.RawMessage) error {
	var payload contraPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &RuleError{Code: ErrRuleViolation, Message: "invalid contra_announcement payload"}
	}

	complete, err := room.State.ContraAnnouncement(player.Position, payload.AnnouncementType)
	if err != nil {
		return err
	}

	sm.broadcastToRoom(room.ID, Message{Type: "contra_made", Data: map[string]any{
		"position":          player.Position,
		"announcement_type": payload.AnnouncementType,
	}})
	if complete {
		sm.announcePlayStart(room)
	}
	return nil
}

// handleRecontra はレコントラコマンドを処理します。
func (sm *SessionManager) handleRecontra(room *GameRoom, player *tarokkmodels.Player, data json.RawMessage) error {
	var payload contraPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &RuleError{Code: ErrRuleViolation, Message: "invalid recontra_announcement payload"}
	}

	complete, err := room.State.RecontraAnnouncement(player.Position, payload.AnnouncementType)
	if err != nil {
		return err
	}

	sm.broadcastToRoom(room.ID, Message{Type: "recontra_made", Data: map[string]any{
		"position":          player.Position,
		"announcement_type": payload.AnnouncementType,
	}})
	if complete {
		sm.announcePlayStart(room)
	}
	return nil
}

// announcePlayStart は宣言フェーズの終了とトリックテイキングの開始を通知します。
func (sm *SessionManager) announcePlayStart(room *GameRoom) {
	sm.broadcastToRoom(room.ID, Message{Type: "announcements_complete", Data: map[string]any{
		"announcements": room.State.Announcements,
	}})
	sm.broadcastToRoom(room.ID, Message{Type: "trick_started", Data: map[string]any{
		"trick_number": room.State.TrickNumber,
		"leader":       room.State.TrickLeader,
	}})
}

// handlePlayCard はカードプレイコマンドを処理します。
// パートナー公開・トリック解決・ハンド終了の通知もここから行われます。
func (sm *SessionManager) handlePlayCard(room *GameRoom, player *tarokkmodels.Player, data json.RawMessage) error {
	var payload playCardPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return &RuleError{Code: ErrRuleViolation, Message: "invalid play_card payload"}
	}

	state := room.State
	result, err := state.PlayCard(player.Position, payload.CardID)
	if err != nil {
		return err
	}

	sm.broadcastToRoom(room.ID, Message{Type: "card_played", Data: map[string]any{
		"position":     player.Position,
		"card":         result.Card,
		"trick_number": result.TrickNumber,
	}})

	if result.PartnerRevealed {
		log.Printf("[SessionManager] Partner revealed in room %s: position %d", room.ID, *state.PartnerPosition)
		sm.broadcastToRoom(room.ID, Message{Type: "partner_revealed", Data: map[string]any{
			"partner_position": *state.PartnerPosition,
		}})
	}

	if result.TrickComplete {
		sm.broadcastToRoom(room.ID, Message{Type: "trick_complete", Data: map[string]any{
			"trick_number": result.TrickNumber,
			"winner":       *result.TrickWinner,
			"points":       result.TrickPoints,
		}})

		if result.HandComplete {
			return sm.settleHand(room)
		}

		sm.broadcastToRoom(room.ID, Message{Type: "trick_started", Data: map[string]any{
			"trick_number": state.TrickNumber,
			"leader":       state.TrickLeader,
		}})
	}
	return nil
}

// settleHand はハンドの精算を実行し、結果を永続化して全員に通知します。
func (sm *SessionManager) settleHand(room *GameRoom) error {
	state := room.State
	settlement, err := state.Settle()
	if err != nil {
		return err
	}

	log.Printf("[SessionManager] Hand settled in room %s: winner=%s, declarer=%d pts, opponents=%d pts",
		room.ID, settlement.Winner, settlement.DeclarerTeamPoints, settlement.OpponentTeamPoints)

	// ハンド結果をデータベースに記録します。記録失敗はゲーム進行を妨げません。
	results := make([]models.HandResult, 0, NumPlayers)
	for _, p := range state.Players {
		results = append(results, models.HandResult{
			RoomID:     room.ID,
			GameID:     state.GameID,
			UserID:     p.ID,
			Position:   p.Position,
			ScoreDelta: settlement.PlayerScores[p.Position] - BaselineScore,
			WinnerTeam: settlement.Winner,
		})
	}
	if err := sm.resultRepo.SaveHandResults(results); err != nil {
		log.Printf("[SessionManager] Failed to save hand results for room %s: %v", room.ID, err)
	}

	sm.broadcastToRoom(room.ID, Message{Type: "game_over", Data: settlement})
	return nil
}

// persistSnapshot はゲーム状態のスナップショットをデータベースに保存します。
// 保存失敗はログに記録されるのみで、ゲーム進行は止めません。
func (sm *SessionManager) persistSnapshot(room *GameRoom) {
	snapshot, err := room.State.Snapshot()
	if err != nil {
		log.Printf("[SessionManager] Failed to snapshot room %s: %v", room.ID, err)
		return
	}
	if err := sm.stateRepo.SaveSnapshot(room.ID, room.State.GameID, string(room.State.Phase), snapshot); err != nil {
		log.Printf("[SessionManager] Failed to persist snapshot for room %s: %v", room.ID, err)
	}
}

// broadcastToRoom はルームの全クライアントに同一のメッセージを送信します。
func (sm *SessionManager) broadcastToRoom(roomID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[SessionManager] Error marshaling message %s for room %s: %v", msg.Type, roomID, err)
		return
	}

	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, client := range sm.clients {
		if client.RoomID == roomID {
			if !client.SafeSend(data) {
				log.Printf("[SessionManager] Failed to send to client %s (channel closed or full)", client.UserID)
			}
		}
	}
}

// broadcastGameState はルームの全クライアントに観測者別のゲーム状態を送信します。
// 各クライアントは自分の手札のみを受け取ります。状態の外部送信は必ず
// ObserverViewの投影を通ります。
func (sm *SessionManager) broadcastGameState(room *GameRoom) {
	room.mu.Lock()
	defer room.mu.Unlock()
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	for _, client := range sm.clients {
		if client.RoomID != room.ID {
			continue
		}
		view := room.State.ObserverView(client.UserID)
		data, err := json.Marshal(Message{Type: "game_state", Data: view})
		if err != nil {
			log.Printf("[SessionManager] Error marshaling game state for room %s: %v", room.ID, err)
			return
		}
		if !client.SafeSend(data) {
			log.Printf("[SessionManager] Failed to send to client %s (channel closed or full)", client.UserID)
		}
	}
}

// sendYourTurn は現在の手番のプレイヤーに、取れるアクションを通知します。
func (sm *SessionManager) sendYourTurn(room *GameRoom) {
	room.mu.Lock()
	defer room.mu.Unlock()

	state := room.State
	player := state.GetPlayer(state.CurrentTurn)
	if player == nil {
		return
	}

	data := map[string]any{
		"phase":    state.Phase,
		"position": player.Position,
	}

	switch state.Phase {
	case PhaseBidding:
		data["valid_bids"] = ValidBidTypes(player, state.BidHistory)
	case PhaseDiscarding:
		data["discard_count"] = len(player.Hand) - TargetHandSize
	case PhaseAnnouncements:
		data["valid_announcements"] = ValidAnnouncements(player.Hand)
	case PhasePlaying:
		isLeading := len(state.CurrentTrick) == 0
		var leadSuit tarokkmodels.Suit
		if !isLeading {
			leadSuit = state.CurrentTrick[0].Card.Suit
		}
		legal := LegalCards(player.Hand, leadSuit, isLeading)
		ids := make([]string, 0, len(legal))
		for _, c := range legal {
			ids = append(ids, c.ID)
		}
		data["legal_card_ids"] = ids
	case PhasePartnerCall:
		// 宣言者がタロックのランクを指名します。
	default:
		return
	}

	sm.sendToUser(player.ID, Message{Type: "your_turn", Data: data})
}

// sendToUser は指定ユーザーにのみメッセージを送信します。
func (sm *SessionManager) sendToUser(userID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("[SessionManager] Error marshaling message %s for user %s: %v", msg.Type, userID, err)
		return
	}

	sm.mu.RLock()
	client, ok := sm.clients[userID]
	sm.mu.RUnlock()
	if !ok {
		return
	}
	if !client.SafeSend(data) {
		log.Printf("[SessionManager] Failed to send to user %s (channel closed or full)", userID)
	}
}

// sendError はコマンドの失敗をコマンド送信者に通知します。
// RuleErrorは分類コード付きでそのまま送信されます。
func (sm *SessionManager) sendError(userID string, err error) {
	var ruleErr *RuleError
	if !errors.As(err, &ruleErr) {
		ruleErr = &RuleError{Code: ErrRuleViolation, Message: err.Error()}
	}
	sm.sendToUser(userID, Message{Type: "error", Data: ruleErr})
}

// EndRoom はルームを終了させ、スナップショットを削除してクライアントを切断します。
//
// Parameters:
//   roomID : 終了するルームのID
func (sm *SessionManager) EndRoom(roomID string) {
	sm.mu.Lock()
	_, ok := sm.rooms[roomID]
	if !ok {
		sm.mu.Unlock()
		log.Printf("[SessionManager] EndRoom called for non-existent room: %s", roomID)
		return
	}
	delete(sm.rooms, roomID)

	// ルームに関連するクライアントのクリーンアップ
	var clientsToUnregister []*Client
	for _, client := range sm.clients {
		if client.RoomID == roomID {
			clientsToUnregister = append(clientsToUnregister, client)
		}
	}
	for _, client := range clientsToUnregister {
		client.SafeClose()
		delete(sm.clients, client.UserID)
		log.Printf("[SessionManager] Cleaned up client %s from ended room %s", client.UserID, roomID)
	}
	sm.mu.Unlock()

	if err := sm.dbService.UpdateRoomStatus(roomID, models.RoomStatusFinished); err != nil {
		log.Printf("[SessionManager] Failed to update room status for %s: %v", roomID, err)
	}
	if err := sm.stateRepo.DeleteSnapshot(roomID); err != nil {
		log.Printf("[SessionManager] Failed to delete snapshot for room %s: %v", roomID, err)
	}
	log.Printf("[SessionManager] Room %s ended", roomID)
}

// Shutdown はSessionManagerを安全にシャットダウンします
func (sm *SessionManager) Shutdown() {
	log.Printf("[SessionManager] シャットダウン開始...")

	// quitチャネルを閉じてRunメソッドのメインループを終了
	close(sm.quit)

	// 全クライアントを安全に切断
	sm.mu.Lock()
	for userID, client := range sm.clients {
		log.Printf("[SessionManager] クライアント %s を切断中...", userID)
		if client.Conn != nil {
			client.Conn.Close()
		}
		client.SafeClose()
	}
	sm.clients = make(map[string]*Client)
	sm.rooms = make(map[string]*GameRoom)
	sm.mu.Unlock()

	log.Printf("[SessionManager] シャットダウン完了")
}

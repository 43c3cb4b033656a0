package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/database"
)

// ResultHandler はハンド精算結果関連のハンドラーを管理する構造体です。
type ResultHandler struct {
	resultRepo database.ResultRepository
}

// NewResultHandler は新しいResultHandlerインスタンスを作成します。
func NewResultHandler(resultRepo database.ResultRepository) *ResultHandler {
	return &ResultHandler{
		resultRepo: resultRepo,
	}
}

// GetTopPlayers は累計スコアの上位ランキングを取得するハンドラーです。
// GET /api/results?limit=50
func (h *ResultHandler) GetTopPlayers(w http.ResponseWriter, r *http.Request) {
	// limitパラメータを取得（デフォルト50）
	limitStr := r.URL.Query().Get("limit")
	limit := 50
	if limitStr != "" {
		if parsedLimit, err := strconv.Atoi(limitStr); err == nil && parsedLimit > 0 && parsedLimit <= 100 {
			limit = parsedLimit
		}
	}

	results, err := h.resultRepo.GetTopPlayers(limit)
	if err != nil {
		log.Printf("ランキング取得エラー: %v", err)
		http.Error(w, "ランキング取得に失敗しました", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// GetRoomResults はルーム内の全ハンド結果を取得するハンドラーです。
// GET /api/results/room/{roomID}
func (h *ResultHandler) GetRoomResults(w http.ResponseWriter, r *http.Request) {
	roomID := mux.Vars(r)["roomID"]
	if roomID == "" {
		http.Error(w, "room_idが指定されていません", http.StatusBadRequest)
		return
	}

	results, err := h.resultRepo.GetRoomResults(roomID)
	if err != nil {
		log.Printf("ルーム結果取得エラー: %v", err)
		http.Error(w, "ルーム結果取得に失敗しました", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"results": results,
	})
}

// GetUserResult は指定したユーザーのランキングを取得するハンドラーです。
// GET /api/results/user/{userID}
func (h *ResultHandler) GetUserResult(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userID"]
	if userID == "" {
		http.Error(w, "user_idが指定されていません", http.StatusBadRequest)
		return
	}

	userResult, err := h.resultRepo.GetPlayerRanking(userID)
	if err != nil {
		log.Printf("ユーザー結果取得エラー: %v", err)
		http.Error(w, "ユーザー結果取得に失敗しました", http.StatusInternalServerError)
		return
	}

	if userResult == nil {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success": true,
			"result":  nil,
			"message": "ユーザーの結果が見つかりません",
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": true,
		"result":  userResult,
	})
}

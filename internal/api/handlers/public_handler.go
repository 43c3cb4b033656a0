package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/database"
)

// PublicHandler handles public API endpoints
type PublicHandler struct {
	DatabaseService *database.DatabaseService
}

// NewPublicHandler creates a new instance of PublicHandler
func NewPublicHandler(dbService *database.DatabaseService) *PublicHandler {
	return &PublicHandler{
		DatabaseService: dbService,
	}
}

// HealthCheckHandler はサーバーの死活確認用のエンドポイントです。
// GET /api/health
func HealthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// GetUserDisplayNameHandler fetches the display name for a given user ID.
// GET /api/user/{userID}/display-name
func (h *PublicHandler) GetUserDisplayNameHandler(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID := vars["userID"]

	if userID == "" {
		http.Error(w, "ユーザーIDが指定されていません", http.StatusBadRequest)
		return
	}

	displayName := h.DatabaseService.GetUserDisplayNameByUserID(userID)

	response := map[string]string{
		"userID":      userID,
		"displayName": displayName,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("GetUserDisplayNameHandler: JSONエンコードエラー: %v", err)
		http.Error(w, "レスポンスの生成に失敗しました", http.StatusInternalServerError)
	}
}

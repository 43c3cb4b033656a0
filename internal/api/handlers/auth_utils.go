package handlers

import (
	"fmt"
	"net/http"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/api/middleware"
)

// ExtractUserIDFromContext はリクエストのコンテキストから認証済みユーザーIDを抽出します。
// AuthMiddlewareが設定したコンテキスト値を参照します。
func ExtractUserIDFromContext(r *http.Request) (string, error) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		return "", fmt.Errorf("ユーザーIDがコンテキストに見つかりません")
	}
	return userID, nil
}

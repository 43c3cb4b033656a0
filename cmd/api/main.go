package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/api/handlers"
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/database"
	"github.com/progate-hackathon-strawberry-flavor/TAROKK-backend/internal/services/tarokk"
)

func main() {
	if os.Getenv("APP_ENV") != "production" {
		err := godotenv.Load()
		if err != nil {
			log.Printf("warning: Error loading .env file (this is fine in production): %v", err)
		}
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// データベース接続の初期化
	dbService, err := database.NewDatabaseService(databaseURL)
	if err != nil {
		log.Fatalf("データベースの初期化に失敗しました: %v", err)
	}
	defer dbService.DB.Close()

	stateRepo := database.NewGameStateRepository(dbService.DB)
	resultRepo := database.NewResultRepository(dbService.DB)

	// セッションマネージャーを起動（メインイベントループはバックグラウンドで動作）
	sessionManager := tarokk.NewSessionManager(dbService, stateRepo, resultRepo)

	gameHandler := handlers.NewGameHandler(sessionManager, dbService)
	resultHandler := handlers.NewResultHandler(resultRepo)
	publicHandler := handlers.NewPublicHandler(dbService)

	r := mux.NewRouter()

	// 認証不要な公開エンドポイント
	r.HandleFunc("/api/health", handlers.HealthCheckHandler).Methods("GET")
	r.HandleFunc("/api/user/{userID}/display-name", publicHandler.GetUserDisplayNameHandler).Methods("GET")
	r.HandleFunc("/api/results", resultHandler.GetTopPlayers).Methods("GET")
	r.HandleFunc("/api/results/room/{roomID}", resultHandler.GetRoomResults).Methods("GET")
	r.HandleFunc("/api/results/user/{userID}", resultHandler.GetUserResult).Methods("GET")

	// WebSocketエンドポイント（認証は接続後の最初のメッセージで行われます）
	r.HandleFunc("/ws/game/{roomID}", gameHandler.HandleWebSocketConnection)

	// 認証が必要なルートグループを作成
	protectedRouter := r.PathPrefix("/api/game").Subrouter()
	protectedRouter.Use(middleware.AuthMiddleware)
	protectedRouter.HandleFunc("/rooms", gameHandler.CreateRoom).Methods("POST")
	protectedRouter.HandleFunc("/rooms", gameHandler.ListRooms).Methods("GET")
	protectedRouter.HandleFunc("/rooms/{roomID}/join", gameHandler.JoinRoom).Methods("POST")
	protectedRouter.HandleFunc("/rooms/{roomID}", gameHandler.GetRoomStatus).Methods("GET")
	protectedRouter.HandleFunc("/rooms/{roomID}/players", gameHandler.GetRoomPlayers).Methods("GET")

	handler := middleware.CORSHandler()(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: handler,
	}

	go func() {
		log.Printf("Server starting on :%s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("サーバーの起動に失敗しました: %v", err)
		}
	}()

	// SIGINT/SIGTERMでグレースフルシャットダウン
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("シャットダウンシグナルを受信しました...")

	sessionManager.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("サーバーのシャットダウンに失敗しました: %v", err)
	}
	log.Println("サーバーを停止しました")
}

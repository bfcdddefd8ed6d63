package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"room-chat/backend/auth"
	"room-chat/backend/broker"
	"room-chat/backend/config"
	"room-chat/backend/database"
	"room-chat/backend/handlers"
	"room-chat/backend/metrics"
	"room-chat/backend/middleware"
	"room-chat/backend/registry"
	"room-chat/backend/websocket"

	"github.com/gorilla/mux"
	"github.com/rs/cors" // 引入 CORS 庫
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	startCtx, startCancel := context.WithTimeout(context.Background(), 30*time.Second)
	store, err := database.ConnectMongoDB(startCtx, cfg.MongoDBURI, cfg.DBName)
	if err != nil {
		log.Fatalf("Could not connect to MongoDB: %v", err)
	}
	defer store.DisconnectMongoDB()
	if err := store.EnsureIndexes(startCtx); err != nil {
		log.Fatalf("Could not create indexes: %v", err)
	}

	// 撤銷清單：有設定 Redis 時多個實例共用，否則只存在記憶體
	var revocations auth.Revocations
	if cfg.RedisAddr != "" {
		redisRevocations := auth.NewRedisRevocations(cfg.RedisAddr)
		if err := redisRevocations.Ping(startCtx); err != nil {
			log.Fatalf("Could not connect to Redis at %s: %v", cfg.RedisAddr, err)
		}
		defer redisRevocations.Close()
		revocations = redisRevocations
		log.Printf("Using Redis token revocation list at %s", cfg.RedisAddr)
	}
	startCancel()

	collectors := metrics.New()
	reg := registry.New(registry.WithQueueSize(cfg.SendQueueSize), registry.WithMetrics(collectors))
	b := broker.New(reg)
	authenticator := auth.NewAuthenticator(cfg.JWTSecret, cfg.TokenTTL, store, revocations)

	wsHandler := websocket.NewHandler(authenticator, websocket.SessionDeps{
		Store:        store,
		Broker:       b,
		Registry:     reg,
		Metrics:      collectors,
		MessageRate:  rate.Limit(cfg.MessageRate),
		MessageBurst: cfg.MessageBurst,
	}, cfg.AllowedOrigins)
	api := handlers.New(store, authenticator, b, cfg.HistoryLimit)
	api.CloseSessionsOnLogout(wsHandler)

	router := mux.NewRouter()

	// 健康檢查路由
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			http.Error(w, "Database unavailable", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, "Backend is running! rooms=%d sessions=%d", len(reg.Rooms()), wsHandler.ActiveSessions())
	}).Methods("GET")
	router.Handle("/metrics", collectors.Handler()).Methods("GET")

	// WebSocket 路由：token 以 Authorization header 或 ?token= 帶入
	router.HandleFunc("/ws", wsHandler.ServeWS)

	api.Routes(router, middleware.JWTMiddleware(authenticator))

	// 設置 CORS 中介軟體
	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// 將 CORS 中介軟體應用到你的路由上
	handler := c.Handler(router)

	serverAddr := fmt.Sprintf(":%s", cfg.Port)
	srv := &http.Server{
		Addr:         serverAddr,
		Handler:      handler,
		IdleTimeout:  120 * time.Second,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", serverAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			// 如果錯誤不是因為主動關閉伺服器，就記錄錯誤並結束程式
			log.Fatalf("Could not listen on %s: %v", serverAddr, err)
		}
	}()

	//當按下 Ctrl+C，程式會收到 SIGINT
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan
	log.Printf("Received signal %s, shutting down server...", sig)

	//最多等30秒關閉，避免資料損壞，請求中斷
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
	// 被 hijack 的 WebSocket 連線不受 srv.Shutdown 管理，需要另外關閉
	if err := wsHandler.Shutdown(ctx); err != nil {
		log.Printf("WebSocket sessions did not close in time: %v", err)
	}
	reg.Close()

	log.Println("Server exited gracefully.")
}

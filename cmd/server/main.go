// cmd/server/main.go
package main

import (
	"log"
	"net/http"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/sirupsen/logrus"

	"github.com/mvankampen/fraghub/internal/auth"
	"github.com/mvankampen/fraghub/internal/database"
	"github.com/mvankampen/fraghub/internal/handlers"
	"github.com/mvankampen/fraghub/internal/journal"
	"github.com/mvankampen/fraghub/internal/middleware"
	"github.com/mvankampen/fraghub/internal/query"
)

func main() {
	auth.Init()

	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)

	// Chat history store is optional; the lobby runs without it.
	if database.Configured() {
		if err := database.ConnectDB(); err != nil {
			log.Fatalf("failed to connect chat history store: %v", err)
		}
		logger.Info("chat history store connected")
	} else {
		logger.Info("no PG_HOST set, chat history disabled")
	}

	// Event journal is optional as well (REDIS_ADDR).
	jnl, err := journal.Connect(logger)
	if err != nil {
		log.Fatalf("failed to connect event journal: %v", err)
	}
	if jnl != nil {
		defer jnl.Close()
		logger.Info("event journal connected")
	}

	srv := handlers.NewServer(logger, jnl)
	statusClient := &query.Client{}

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", handlers.PingHandler)

	// lobby fanout websocket
	mux.Handle("/lobby/ws", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.LobbyWSHandler(logger, srv),
	)))

	// out-of-band game server status probe
	mux.Handle("/status", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.StatusHandler(logger, statusClient),
	)))

	// debug listing of the in-memory session store
	mux.Handle("/sessions", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ListSessionsHandler(srv),
	)))

	// chat history (persistent collaborator)
	mux.Handle("/chat/history", middleware.LogMiddleware(logger)(http.HandlerFunc(
		handlers.ChatHistoryHandler(logger),
	)))

	addr := ":8080"
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	logger.Infof("Running on %s", addr)
	if err := http.ListenAndServe(addr, middleware.CORSMiddleware(mux)); err != nil {
		log.Fatalf("server exited: %v", err)
	}
}

//go:build !wasm

package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/maxence-charriere/go-app/v10/pkg/app"

	"github.com/sundowners/taskhub/internal/api"
	"github.com/sundowners/taskhub/internal/config"
	"github.com/sundowners/taskhub/internal/db"
	"github.com/sundowners/taskhub/internal/push"
	"github.com/sundowners/taskhub/internal/realtime"
)

func serve() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	addr := flag.String("addr", ":8080", "listen address")
	dataDir := flag.String("data", "data", "directory of the development database")
	devAPI := flag.Bool("dev-api", false, "serve the development API under the API base path")
	flag.Parse()

	cfg := config.Load(*addr, *dataDir, *devAPI)

	r := mux.NewRouter()
	hub := realtime.NewHub(cfg.AllowedOrigins)
	r.Handle("/ws", hub)

	if cfg.DevAPI {
		if err := db.Init(cfg.DataDir); err != nil {
			log.Fatalf("error opening database: %v", err)
		}
		defer db.Close()

		if n, err := db.PromoteAdmins(cfg.AdminEmails); err != nil {
			log.Printf("error syncing admins: %v", err)
		} else if n > 0 {
			log.Printf("Promoted %d admin user(s)", n)
		}

		prefix := "/api"
		if strings.HasPrefix(cfg.APIBaseURL, "/") {
			prefix = strings.TrimRight(cfg.APIBaseURL, "/")
		}
		sender := push.New(cfg.Push.Endpoint, cfg.Push.APIKey)
		var h http.Handler = api.NewRouter(cfg, sender)
		h = http.TimeoutHandler(h, cfg.RequestTimeout, `{"message":"Request timed out"}`)
		h = api.CORS(cfg.AllowedOrigins)(h)
		r.PathPrefix(prefix + "/").Handler(http.StripPrefix(prefix, h))
		log.Printf("Development API on %s", prefix)
	}

	r.PathPrefix("/").Handler(&app.Handler{
		Name:        "TaskHub",
		ShortName:   "TaskHub",
		Title:       "TaskHub",
		Description: "Tasks, teammates and real-time updates",
		Styles:      []string{"/web/app.css"},
		Env: map[string]string{
			"API_BASE_URL": cfg.APIBaseURL,
			"REALTIME_URL": cfg.RealtimeURL,
		},
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("TaskHub running on %s", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down: %v", err)
	}
}

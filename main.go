package main

import (
	"log"
	"net/http"

	"resq.live/auth"
	"resq.live/config"
	"resq.live/data"
	"resq.live/push"
	"resq.live/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[resq] config: %v", err)
	}

	data.SetDataDir(cfg.DataDir)

	store, err := auth.OpenStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("[resq] open user store: %v", err)
	}
	defer store.Close()

	authService := auth.NewService(store, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	pushManager := push.NewManager(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
	relay := server.NewRelay(cfg.AlertRadiusKm, pushManager)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", server.HealthHandler)
	mux.Handle("/connect", server.NewConnectHandler(relay, authService, cfg.AllowAnonymous))
	mux.HandleFunc("/api/v1/user/signup", authHandler.Signup)
	mux.HandleFunc("/api/v1/user/login", authHandler.Login)
	mux.Handle("/push/subscribe", push.NewHandler(pushManager, authService))

	log.Printf("[resq] listening on %s", cfg.Address)
	if err := http.ListenAndServe(cfg.Address, server.WithCors(mux)); err != nil {
		log.Fatal(err)
	}
}

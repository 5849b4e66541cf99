package main

import (
	"log"
	"net/http"

	"mergex-backend/internal/config"
	"mergex-backend/internal/server"
)

func main() {
	cfg := config.Load()
	s, err := server.NewServer(cfg)
	if err != nil {
		log.Fatalf("failed to create server: %v", err)
	}
	addr := ":" + cfg.Port
	log.Printf("mergeX review server listening on %s", addr)
	log.Fatal(http.ListenAndServe(addr, s.Router()))
}

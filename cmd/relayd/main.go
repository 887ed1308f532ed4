// Command relayd runs the development relay: a payload-agnostic websocket
// room server the signer and dashboard pair through.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"

	"github.com/Griplock-Labs/MobileApp-sub001/internal/bootstrap"
	"github.com/Griplock-Labs/MobileApp-sub001/internal/relayserver"
)

func main() {
	_ = godotenv.Load()

	addr := flag.String("addr", ":5000", "listen address")
	ttl := flag.Duration("room-ttl", relayserver.DefaultRoomTTL, "room expiry")
	flag.Parse()

	hub := relayserver.NewHub(*ttl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx, time.Minute)

	mux := http.NewServeMux()
	mux.Handle(bootstrap.RelayPath, hub.Handler())

	log.Printf("relayd listening on %s%s", *addr, bootstrap.RelayPath)
	log.Fatal(http.ListenAndServe(*addr, mux))
}

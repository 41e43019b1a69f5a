// Command bioinfer-server provides a REST API for bioinfer operations.
//
// Usage:
//
//	bioinfer-server [options]
//
// Options:
//
//	-port     Port to listen on (default: 8080)
//	-host     Host to bind to (default: localhost)
//	-store    Model store backend, memory or sqlite (default: memory)
//	-db       SQLite database path (default: bioinfer.db)
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aria-lang/bioinfer-go/api"
	"github.com/aria-lang/bioinfer-go/internal/store"
)

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	host := flag.String("host", "localhost", "Host to bind to")
	backend := flag.String("store", "memory", "Model store backend (memory or sqlite)")
	dbPath := flag.String("db", "bioinfer.db", "SQLite database path")
	flag.Parse()

	st, err := store.NewStore(*backend, *dbPath)
	if err != nil {
		log.Fatalf("Could not create model store: %v\n", err)
	}
	if err := st.Init(context.Background()); err != nil {
		log.Fatalf("Could not open model store: %v\n", err)
	}
	defer func() {
		if err := store.CloseIfSupported(st); err != nil {
			log.Printf("Could not close model store: %v\n", err)
		}
	}()

	addr := fmt.Sprintf("%s:%d", *host, *port)
	server := &http.Server{
		Addr:         addr,
		Handler:      api.NewRouter(st, log.Default()),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 75 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool, 1)
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		server.SetKeepAlivesEnabled(false)
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("Could not gracefully shutdown: %v\n", err)
		}
		close(done)
	}()

	log.Printf("bioinfer API server starting on http://%s (%s model store)\n", addr, *backend)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Could not listen on %s: %v\n", addr, err)
	}

	<-done
	log.Println("Server stopped")
}

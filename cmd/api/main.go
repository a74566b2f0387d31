package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"semsynth/adapters/markdown"
	"semsynth/internal"
	"semsynth/internal/config"
)

// Thin report server: serves the JSON payloads a reporting run wrote plus an
// HTML rendering of the plain-language summary. No computation happens here.
func main() {
	_ = godotenv.Load()
	log := internal.NewDefaultLogger()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config: %v", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	outDir := cfg.Output.Dir
	payloads := []string{
		"modelResults.json",
		"doseEffects.json",
		"sampleDescriptives.json",
		"groupComparisons.json",
		"dataMetadata.json",
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	for _, name := range payloads {
		name := name
		r.Get("/data/"+name, func(w http.ResponseWriter, req *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			http.ServeFile(w, req, filepath.Join(outDir, name))
		})
	}

	r.Get("/summary", func(w http.ResponseWriter, req *http.Request) {
		md, err := os.ReadFile(filepath.Join(outDir, "Plain_Language_Summary.md"))
		if err != nil {
			http.Error(w, "summary not generated yet", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(markdown.RenderHTML(md))
	})

	addr := ":" + cfg.Server.Port
	log.Info("report server listening on %s, serving %s", addr, outDir)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Error("server failed: %v", err)
		os.Exit(1)
	}
}

// Package main implements a mock CIS salePrice server for local development.
// It serves canned brand price rows from a JSON fixture so the service can
// run without a RapidAPI key or quota.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync/atomic"
	"time"
)

// fixture maps a lowercase brand name to its salePrice rows.
type fixture map[string][]json.RawMessage

type salePriceResponse struct {
	BrandName  string            `json:"brandName"`
	RegionName string            `json:"regionName,omitempty"`
	Data       []json.RawMessage `json:"data"`
}

func main() {
	port := flag.Int("port", 8089, "port to listen on")
	fixtureFile := flag.String("fixture", "tools/mock-server/testdata/sale_price.json", "path to salePrice fixture")
	dailyLimit := flag.Int64("daily-limit", 0, "answer 429 after this many calls (0 = unlimited)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	fx, err := loadFixture(*fixtureFile)
	if err != nil {
		logger.Error("failed to load fixture", "path", *fixtureFile, "error", err)
		os.Exit(1)
	}
	logger.Info("loaded fixture", "brands", len(fx))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /salePrice", salePriceHandler(logger, fx, *dailyLimit))

	addr := fmt.Sprintf(":%d", *port)
	logger.Info("starting mock salePrice server", "addr", addr)

	srv := &http.Server{
		Addr:         addr,
		Handler:      requestLogger(logger, mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func loadFixture(path string) (fixture, error) {
	data, err := os.ReadFile(path) //nolint:gosec // fixture path from trusted CLI flag
	if err != nil {
		return nil, fmt.Errorf("reading fixture: %w", err)
	}
	var raw fixture
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing fixture: %w", err)
	}

	fx := make(fixture, len(raw))
	for brand, rows := range raw {
		fx[strings.ToLower(brand)] = rows
	}
	return fx, nil
}

func requestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("request", "method", r.Method, "path", r.URL.Path, "query", r.URL.RawQuery)
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck,gosec // best-effort write to HTTP response in mock server
	json.NewEncoder(w).Encode(v)
}

func salePriceHandler(logger *slog.Logger, fx fixture, dailyLimit int64) http.HandlerFunc {
	var calls atomic.Int64

	return func(w http.ResponseWriter, r *http.Request) {
		// Any key is accepted; only its presence is checked.
		if r.Header.Get("x-rapidapi-key") == "" {
			logger.Warn("salePrice request missing x-rapidapi-key")
			writeJSON(w, http.StatusUnauthorized, map[string]string{
				"message": "Invalid API key. Go to https://docs.rapidapi.com/docs/keys for more info.",
			})
			return
		}

		if n := calls.Add(1); dailyLimit > 0 && n > dailyLimit {
			writeJSON(w, http.StatusTooManyRequests, map[string]string{
				"message": "You have exceeded the DAILY quota for Requests on your current plan.",
			})
			return
		}

		brand := strings.TrimSpace(r.URL.Query().Get("brandName"))
		region := r.URL.Query().Get("regionName")
		if brand == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"message": "brandName is required"})
			return
		}

		rows := fx[strings.ToLower(brand)]
		if rows == nil {
			rows = []json.RawMessage{}
		}

		writeJSON(w, http.StatusOK, salePriceResponse{
			BrandName:  brand,
			RegionName: region,
			Data:       rows,
		})
		logger.Info("salePrice", "brand", brand, "region", region, "rows", len(rows))
	}
}

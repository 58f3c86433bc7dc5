package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/splitbot-dev/splitbot/internal/model"
	"github.com/splitbot-dev/splitbot/internal/services/scoreboard"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger *slog.Logger
	Scores *scoreboard.Service
}

// knownGames guards the leaderboard route against arbitrary namespace
// reads
var knownGames = map[model.GameKey]bool{
	model.GameGuessTime: true,
	model.GameTrivia:    true,
}

// NewRouter creates the read-only HTTP surface: liveness plus
// leaderboard queries. It doubles as the process keep-alive endpoint.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()
	r.Use(recovery(cfg.Logger))
	r.Use(logging(cfg.Logger))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/api/v1/leaderboard/{game}", func(w http.ResponseWriter, req *http.Request) {
		game := model.GameKey(mux.Vars(req)["game"])
		if !knownGames[game] {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown game"})
			return
		}

		limit := 10
		if raw := req.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid limit"})
				return
			}
			limit = n
		}

		records, err := cfg.Scores.TopN(req.Context(), game, limit)
		if err != nil {
			cfg.Logger.Error("leaderboard query failed",
				slog.String("game", string(game)),
				slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}

		rows := make([]leaderboardRow, 0, len(records))
		for i, rec := range records {
			rows = append(rows, leaderboardRow{
				Rank:        i + 1,
				DisplayName: rec.DisplayName,
				Score:       rec.Score,
			})
		}
		writeJSON(w, http.StatusOK, leaderboardResponse{Game: string(game), Entries: rows})
	}).Methods(http.MethodGet)

	return r
}

type leaderboardRow struct {
	Rank        int    `json:"rank"`
	DisplayName string `json:"display_name"`
	Score       int64  `json:"score"`
}

type leaderboardResponse struct {
	Game    string           `json:"game"`
	Entries []leaderboardRow `json:"entries"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// logging logs each request with method, path, and status
func logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, req)
			logger.Info("http request",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", rec.status))
		})
	}
}

// recovery turns handler panics into 500 responses
func recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("handler panic",
						slog.String("path", req.URL.Path),
						slog.Any("panic", r))
					writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				}
			}()
			next.ServeHTTP(w, req)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

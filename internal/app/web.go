package app

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/relabs-tech/affect_computer/internal/affect"
)

// HistoryResponse is returned by GET /api/affect/history.
type HistoryResponse struct {
	Emotions []affect.DetectedEmotion `json:"emotions"`
	States   []affect.AffectiveState  `json:"states"`
}

// DistributionResponse is returned by GET /api/affect/distribution.
type DistributionResponse struct {
	Distribution map[affect.EmotionType]int `json:"distribution"`
	Average      affect.AffectiveState      `json:"average"`
	Dominant     affect.EmotionType         `json:"dominant"`
	Total        int                        `json:"total"`
}

// NewWebHandler serves the affect JSON API, the live websocket stream
// and, when staticDir exists, the dashboard files.
func NewWebHandler(e *Engine, staticDir string) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/affect/current", func(w http.ResponseWriter, r *http.Request) {
		res, ok := e.Pipeline.Current()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, res)
	})

	mux.HandleFunc("GET /api/affect/history", func(w http.ResponseWriter, r *http.Request) {
		resp := HistoryResponse{}
		if q := r.URL.Query().Get("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n < 0 {
				http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
				return
			}
			resp.Emotions = e.Pipeline.RecentEmotions(n)
			resp.States = e.Pipeline.RecentStates(n)
		} else {
			resp.Emotions = e.Pipeline.EmotionHistory()
			resp.States = e.Pipeline.StateHistory()
		}
		writeJSON(w, resp)
	})

	mux.HandleFunc("GET /api/affect/distribution", func(w http.ResponseWriter, r *http.Request) {
		snap := e.Pipeline.Snapshot()
		writeJSON(w, DistributionResponse{
			Distribution: snap.Distribution,
			Average:      snap.Average,
			Dominant:     snap.Dominant,
			Total:        snap.Total,
		})
	})

	mux.HandleFunc("POST /api/affect/reset", func(w http.ResponseWriter, r *http.Request) {
		e.Pipeline.Reset()
		log.Println("web: pipeline reset")
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /api/gps", func(w http.ResponseWriter, r *http.Request) {
		fix, ok := e.GPS.Latest()
		if !ok {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, fix)
	})

	mux.HandleFunc("GET /ws/affect", e.Hub.ServeWS)

	if info, err := os.Stat(staticDir); err == nil && info.IsDir() {
		mux.Handle("/", http.FileServer(http.Dir(staticDir)))
	}

	return mux
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

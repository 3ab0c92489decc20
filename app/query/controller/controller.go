package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"

	"github.com/GareBear99/admension/app/query/types"
)

type Controller struct {
	App *types.App
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	return &Controller{
		App: app,
	}
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	r.Handle("/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	r.HandleFunc("/payouts", c.HandlePayoutsList).Methods(http.MethodGet)
	r.HandleFunc("/payouts/{tag}", c.HandlePayoutDetail).Methods(http.MethodGet)
	r.HandleFunc("/payouts/{tag}/ledger.csv", c.HandlePayoutCSV).Methods(http.MethodGet)
	r.HandleFunc("/recipients/{code}/earnings", c.HandleRecipientEarnings).Methods(http.MethodGet)
	r.HandleFunc("/stats/{tag}", c.HandlePeriodStats).Methods(http.MethodGet)

	// WebSocket endpoint for real-time ledger notifications
	r.HandleFunc("/ws", c.HandleWebSocket).Methods(http.MethodGet)

	return r, nil
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

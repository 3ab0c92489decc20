package controller

import (
	"net/http"

	"github.com/go-jose/go-jose/v4/json"
	"github.com/gorilla/mux"

	"github.com/GareBear99/admension/app/admin/types"
	"github.com/GareBear99/admension/pkg/utils"
)

type Controller struct {
	App        *types.App
	AdminToken string
	AuthUser   string
	Users      map[string]types.User
	AuthHash   []byte
	JWTSecret  []byte
}

// NewController returns a new controller.
func NewController(app *types.App) *Controller {
	adminToken := utils.Env("ADMIN_TOKEN", "devtoken")
	adminUser := utils.Env("ADMIN_USER", "admin")
	adminUsersJSON := utils.Env("ADMIN_USERS", "")
	adminPass := utils.Env("ADMIN_PASSWORD", "admin")
	jwtSecret := []byte(utils.Env("SESSION_SECRET", "change-me-please"))

	phash, _ := utils.HashOrRead(adminPass)
	users := map[string]types.User{}
	users[adminUser] = types.User{Username: adminUser, Hash: phash, Role: "admin"}
	if adminUsersJSON != "" {
		_ = json.Unmarshal([]byte(adminUsersJSON), &users)
	}

	return &Controller{
		App:        app,
		AdminToken: adminToken,
		AuthUser:   adminUser,
		Users:      users,
		AuthHash:   phash,
		JWTSecret:  jwtSecret,
	}
}

// WithCORS is a middleware that adds CORS headers to the response.
func WithCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
		} else {
			w.Header().Set("Access-Control-Allow-Origin", "*")
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", http.MethodGet+", "+http.MethodPost+", "+http.MethodPut+", "+http.MethodDelete+", "+http.MethodOptions)

		// Fast-path the preflight
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// NewRouter returns a new router with all the routes defined in this file.
func (c *Controller) NewRouter() (*mux.Router, error) {
	r := mux.NewRouter()

	// basically it's ok, could even be a public endpoint
	r.Handle("/api/health", http.HandlerFunc(c.HandleHealth)).Methods(http.MethodGet)

	// Admin API - Login/Logout
	r.HandleFunc("/api/auth/login", c.HandleAdminLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/auth/logout", c.HandleAdminLogout).Methods(http.MethodPost)

	// Revenue settlements
	r.Handle("/api/settlements/{tag}", c.RequireAuth(http.HandlerFunc(c.HandleSettlementUpsert))).Methods(http.MethodPut)
	r.Handle("/api/settlements/{tag}", c.RequireAuth(http.HandlerFunc(c.HandleSettlementGet))).Methods(http.MethodGet)

	// Recipient wallets
	r.Handle("/api/wallets", c.RequireAuth(http.HandlerFunc(c.HandleWalletUpsert))).Methods(http.MethodPost)
	r.Handle("/api/wallets/{code}", c.RequireAuth(http.HandlerFunc(c.HandleWalletGet))).Methods(http.MethodGet)

	// Payout runs
	r.Handle("/api/payouts/{tag}/run", c.RequireAuth(http.HandlerFunc(c.HandleTriggerRun))).Methods(http.MethodPost)
	r.Handle("/api/payouts/recompute", c.RequireAuth(http.HandlerFunc(c.HandleTriggerRecompute))).Methods(http.MethodPost)

	return r, nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
)

type RouterConfig struct {
	Bookings   *BookingHandler
	Tables     *TableHandler
	Health     func(ctx context.Context) error
	Metrics    http.Handler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Bookings != nil {
		mux.HandleFunc("/bookings", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.List(w, r)
			case http.MethodPost:
				cfg.Bookings.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/bookings/move_to_table", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Bookings.Move(w, r)
		})
		mux.HandleFunc("/bookings/swap_tables", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Bookings.Swap(w, r)
		})
		mux.HandleFunc("/bookings/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/bookings/")
			parts := strings.Split(strings.Trim(rest, "/"), "/")

			edit := false
			if len(parts) == 3 && parts[2] == "edit" {
				edit = true
				parts = parts[:2]
			}
			if len(parts) != 2 {
				http.NotFound(w, r)
				return
			}
			index, err := strconv.Atoi(parts[1])
			if err != nil || index < 0 || parts[0] == "" {
				http.NotFound(w, r)
				return
			}

			ctx := ContextWithBookingRef(r.Context(), BookingRef{Date: parts[0], Index: index})
			r = r.WithContext(ctx)

			if edit {
				switch r.Method {
				case http.MethodGet:
					cfg.Bookings.Get(w, r)
				case http.MethodPost:
					cfg.Bookings.Edit(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
				return
			}

			switch r.Method {
			case http.MethodGet:
				cfg.Bookings.Get(w, r)
			case http.MethodDelete:
				cfg.Bookings.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
		mux.HandleFunc("/api/available-times", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Bookings.AvailableTimes(w, r)
		})
	}

	if cfg.Tables != nil {
		mux.HandleFunc("/tables", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Tables.List(w, r)
			case http.MethodPost:
				cfg.Tables.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/tables/", func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.URL.Path, "/tables/")
			if raw == "" {
				http.NotFound(w, r)
				return
			}
			id, err := strconv.Atoi(raw)
			if err != nil {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithTableID(r.Context(), id)
			r = r.WithContext(ctx)
			if r.Method != http.MethodPut {
				methodNotAllowed(w, http.MethodPut)
				return
			}
			cfg.Tables.Update(w, r)
		})
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				http.Error(w, "unhealthy", http.StatusServiceUnavailable)
				return
			}
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	var handler http.Handler = mux
	if len(cfg.Middleware) > 0 {
		for i := len(cfg.Middleware) - 1; i >= 0; i-- {
			if cfg.Middleware[i] != nil {
				handler = cfg.Middleware[i](handler)
			}
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}

package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Alarms     *AlarmHandler
	Audios     *AudioHandler
	Middleware []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Alarms != nil {
		mux.HandleFunc("/alarmas", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Alarms.List(w, r)
			case http.MethodPost:
				cfg.Alarms.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/alarmas/proximas", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			cfg.Alarms.ListUpcoming(w, r)
		})
		mux.HandleFunc("/alarmas/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/alarmas/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			if id, ok := strings.CutSuffix(rest, "/duplicar"); ok {
				if id == "" {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodPost {
					methodNotAllowed(w, http.MethodPost)
					return
				}
				r = r.WithContext(ContextWithAlarmID(r.Context(), id))
				cfg.Alarms.Duplicate(w, r)
				return
			}

			if strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}

			r = r.WithContext(ContextWithAlarmID(r.Context(), rest))
			switch r.Method {
			case http.MethodPut:
				cfg.Alarms.Update(w, r)
			case http.MethodDelete:
				cfg.Alarms.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
	}

	if cfg.Audios != nil {
		mux.HandleFunc("/audios", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Audios.List(w, r)
			case http.MethodPost:
				cfg.Audios.Upload(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/audios/archivos/", func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimPrefix(r.URL.Path, "/audios/archivos/")
			if name == "" {
				http.NotFound(w, r)
				return
			}
			if r.Method != http.MethodGet {
				methodNotAllowed(w, http.MethodGet)
				return
			}
			r = r.WithContext(ContextWithAudioName(r.Context(), name))
			cfg.Audios.Serve(w, r)
		})
		mux.HandleFunc("/audios/", func(w http.ResponseWriter, r *http.Request) {
			name := strings.TrimPrefix(r.URL.Path, "/audios/")
			if name == "" || strings.Contains(name, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithAudioName(r.Context(), name))
			switch r.Method {
			case http.MethodPut:
				cfg.Audios.Rename(w, r)
			case http.MethodDelete:
				cfg.Audios.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodPut, http.MethodDelete)
			}
		})
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

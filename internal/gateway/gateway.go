// Package gateway publica a API sob /api, o caminho que o frontend usa, e
// repassa as chamadas ao bet-service.
package gateway

import (
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	httpapi "github.com/solbet/solbet-platform/internal/bet-service/http"
)

// New monta o roteador: /api/* vai ao bet-service sem o prefixo. CORS e
// WebSocket ficam a cargo do bet-service.
func New(betURL string, log *zap.Logger) (http.Handler, error) {
	target, err := url.Parse(betURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, errors.Errorf("invalid bet-service url %q", betURL)
	}

	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Warn("upstream failed",
			zap.String("path", r.URL.Path),
			zap.String("requestId", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"bet service unavailable"}` + "\n"))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(httpapi.AccessLog(log))
	r.Mount("/api", http.StripPrefix("/api", proxy))
	return r, nil
}

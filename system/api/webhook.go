package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/timewave-computer/causality/infrastructure/errors"
)

// WebhookHandler processes one external system's callback payload.
type WebhookHandler func(system string, payload []byte) error

// WebhookRouter registers per-system webhook/callback routes for
// external systems that raise Boundary errors on failure, mirroring the
// teacher's callback-route registration pattern. Grounded on the
// teacher's infrastructure/service.Runner, whose Router() method returns
// a *mux.Router the teacher's marble services mount handlers onto.
type WebhookRouter struct {
	router *mux.Router
	log    *zap.Logger

	mu       sync.RWMutex
	handlers map[string]WebhookHandler
}

// NewWebhookRouter builds an empty WebhookRouter. log may be nil.
func NewWebhookRouter(log *zap.Logger) *WebhookRouter {
	if log == nil {
		log = zap.NewNop()
	}
	w := &WebhookRouter{router: mux.NewRouter(), log: log, handlers: make(map[string]WebhookHandler)}
	w.router.HandleFunc("/webhooks/{system}", w.dispatch).Methods(http.MethodPost)
	return w
}

// Register installs the callback handler for an external system's
// webhook route.
func (w *WebhookRouter) Register(system string, handler WebhookHandler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers[system] = handler
}

// Handler returns the router's http.Handler.
func (w *WebhookRouter) Handler() http.Handler { return w.router }

func (w *WebhookRouter) dispatch(rw http.ResponseWriter, r *http.Request) {
	system := mux.Vars(r)["system"]

	w.mu.RLock()
	handler, ok := w.handlers[system]
	w.mu.RUnlock()
	if !ok {
		http.Error(rw, "no webhook registered for system", http.StatusNotFound)
		return
	}

	var payload json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(rw, err.Error(), http.StatusBadRequest)
		return
	}

	if err := handler(system, payload); err != nil {
		boundaryErr := errors.Boundary(system, err)
		w.log.Warn("webhook handler failed", zap.String("system", system), zap.Error(boundaryErr))
		http.Error(rw, boundaryErr.Error(), http.StatusBadGateway)
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

// Package gateway hosts the HTTP surface of the bot: the signed webhook
// endpoint, health and readiness probes, and the rule-source download.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/grinzing/jukei-line-yesterday/pkg/bot"
	"github.com/grinzing/jukei-line-yesterday/pkg/config"
	"github.com/grinzing/jukei-line-yesterday/pkg/line"
	"github.com/grinzing/jukei-line-yesterday/pkg/rules"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = 18790

	// maxWebhookBody bounds one webhook delivery; LINE deliveries are small.
	maxWebhookBody = 1 << 20

	// maxConcurrentEvents bounds the per-delivery event fan-out.
	maxConcurrentEvents = 8
)

// Service runs the webhook HTTP server and answers health probes.
type Service struct {
	cfg        *config.Config
	log        *slog.Logger
	store      *rules.Store
	dispatcher *bot.Dispatcher

	mu        sync.RWMutex
	startedAt time.Time
}

type rulesStatus struct {
	Loaded bool   `json:"loaded"`
	Count  int    `json:"count"`
	Source string `json:"source,omitempty"`
}

type statusResponse struct {
	Status        string      `json:"status"`
	UptimeSeconds int64       `json:"uptime_seconds"`
	Rules         rulesStatus `json:"rules"`
}

// NewService wires the webhook server around the rule store and dispatcher.
func NewService(cfg *config.Config, store *rules.Store, dispatcher *bot.Dispatcher, log *slog.Logger) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if store == nil {
		return nil, errors.New("rule store is required")
	}
	if dispatcher == nil {
		return nil, errors.New("dispatcher is required")
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		cfg:        cfg,
		log:        log.With("component", "gateway.service"),
		store:      store,
		dispatcher: dispatcher,
	}, nil
}

// Run serves HTTP until ctx is canceled. The rule table is warmed on startup;
// a warm-up failure is logged but not fatal here, because every webhook
// delivery re-checks the store and fails explicitly.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	s.mu.Lock()
	s.startedAt = time.Now().UTC()
	s.mu.Unlock()

	if _, err := s.store.Table(); err != nil {
		s.log.Error("Rule table warm-up failed; webhook deliveries will be rejected", "error", err)
	}

	host := strings.TrimSpace(s.cfg.Gateway.Host)
	if host == "" {
		host = defaultHost
	}
	port := s.cfg.Gateway.Port
	if port <= 0 {
		port = defaultPort
	}
	addr := host + ":" + strconv.Itoa(port)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/webhook", s.handleWebhook)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /api/csv/download", s.handleCSVDownload)

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	s.log.Info("Webhook server started", "address", addr, "rules_path", s.store.Path())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve webhook endpoint: %w", err)
	}

	return nil
}

// handleWebhook verifies one delivery, then processes its events concurrently.
// Event failures are isolated: one event's error never aborts its siblings,
// and the delivery is still acknowledged with 200.
func (s *Service) handleWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	signature := r.Header.Get(line.SignatureHeader)
	if signature == "" {
		s.log.Warn("Webhook delivery without signature")
		http.Error(w, "missing signature", http.StatusUnauthorized)
		return
	}
	if !line.ValidateSignature(s.cfg.Line.ChannelSecret, signature, body) {
		s.log.Warn("Webhook delivery with invalid signature")
		http.Error(w, "invalid signature", http.StatusUnauthorized)
		return
	}

	// Fail the whole delivery when the rule source could not be loaded, so
	// the platform sees an explicit upstream failure instead of wrong
	// behavior against an empty table.
	if _, err := s.store.Table(); err != nil {
		s.log.Error("Rejecting webhook delivery, rule table unavailable", "error", err)
		http.Error(w, "rule table unavailable", http.StatusInternalServerError)
		return
	}

	var delivery line.WebhookRequest
	if err := json.Unmarshal(body, &delivery); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	requestID := uuid.NewString()
	s.log.Info("Webhook delivery received", "request_id", requestID, "events", len(delivery.Events))

	var group errgroup.Group
	group.SetLimit(maxConcurrentEvents)
	for _, event := range delivery.Events {
		group.Go(func() error {
			if err := s.dispatcher.HandleEvent(r.Context(), event); err != nil {
				s.log.Error("Webhook event failed",
					"request_id", requestID, "event_type", event.Type, "error", err)
			}
			return nil
		})
	}
	_ = group.Wait()

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.respondStatus(w, http.StatusOK, "ok")
}

func (s *Service) handleReady(w http.ResponseWriter, _ *http.Request) {
	statusCode := http.StatusOK
	status := "ready"
	if loaded, _ := s.store.Status(); !loaded {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	s.respondStatus(w, statusCode, status)
}

// handleCSVDownload serves the active rule source as a CSV attachment.
func (s *Service) handleCSVDownload(w http.ResponseWriter, _ *http.Request) {
	content, err := os.ReadFile(s.store.Path())
	if err != nil {
		s.log.Error("Failed to read rule source for download", "path", s.store.Path(), "error", err)
		http.Error(w, "rule source unavailable", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="responses.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

func (s *Service) respondStatus(w http.ResponseWriter, statusCode int, status string) {
	payload := s.currentStatus(status)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Error("Failed to write status response", "error", err)
	}
}

func (s *Service) currentStatus(status string) statusResponse {
	s.mu.RLock()
	startedAt := s.startedAt
	s.mu.RUnlock()

	uptime := int64(0)
	if !startedAt.IsZero() {
		uptime = int64(time.Since(startedAt).Seconds())
	}

	loaded, count := s.store.Status()
	return statusResponse{
		Status:        status,
		UptimeSeconds: uptime,
		Rules:         rulesStatus{Loaded: loaded, Count: count, Source: s.store.Path()},
	}
}

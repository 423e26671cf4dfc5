package agent

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/internal/biometric/entity"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/apperr"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/metrics"
)

// maxReplyBytes bounds agent replies; an enrollment payload carries thirteen
// base64 images.
const maxReplyBytes = 256 << 20

type Config struct {
	BaseURL        string
	Timeout        time.Duration // upper bound for one request, response included
	ConnectTimeout time.Duration // upper bound for establishing the connection
}

// ConfigFromEnv reads agent config from environment variables
func ConfigFromEnv() Config {
	base := os.Getenv("AGENT_URL")
	if base == "" {
		base = "http://127.0.0.1:5000"
	}
	cfg := Config{BaseURL: strings.TrimRight(base, "/"), Timeout: 30 * time.Second, ConnectTimeout: 5 * time.Second}
	if d, err := time.ParseDuration(os.Getenv("AGENT_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}
	if d, err := time.ParseDuration(os.Getenv("AGENT_CONNECT_TIMEOUT")); err == nil && d > 0 {
		cfg.ConnectTimeout = d
	}
	return cfg
}

// HTTPGateway talks to the agent's JSON API.
type HTTPGateway struct {
	base    string
	timeout time.Duration
	client  *http.Client
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics
}

var _ Gateway = (*HTTPGateway)(nil)

func NewHTTPGateway(cfg Config, logger *zap.SugaredLogger, m *metrics.Metrics) *HTTPGateway {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ConnectTimeout <= 0 || cfg.ConnectTimeout > cfg.Timeout {
		cfg.ConnectTimeout = cfg.Timeout
	}
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: cfg.ConnectTimeout, KeepAlive: 30 * time.Second}).DialContext,
		MaxIdleConns:        16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: cfg.ConnectTimeout,
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &HTTPGateway{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		client:  &http.Client{Transport: transport},
		logger:  logger,
		metrics: m,
	}
}

func (g *HTTPGateway) StartEnrollment(ctx context.Context) (json.RawMessage, error) {
	return g.call(ctx, "start_enrollment", http.MethodPost, "/api/start_enrollment", nil, true)
}

// enrollmentDataReply accepts both the documented field names and the
// *_base64 names some agent builds emit.
type enrollmentDataReply struct {
	Success         *bool              `json:"success"`
	Message         string             `json:"message"`
	Templates       map[string]*string `json:"templates"`
	TemplatesBase64 map[string]*string `json:"templates_base64"`
	Images          map[string]*string `json:"images"`
	ImagesBase64    map[string]*string `json:"images_base64"`
}

func (g *HTTPGateway) FetchEnrollmentData(ctx context.Context) (*entity.EnrollmentPayload, error) {
	const op = "get_enrollment_data"
	raw, err := g.call(ctx, op, http.MethodGet, "/api/get_enrollment_data", nil, true)
	if err != nil {
		return nil, err
	}
	var reply enrollmentDataReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, &Error{Op: op, Kind: apperr.ErrAgentError, Message: "malformed enrollment data", Err: err}
	}
	payload := &entity.EnrollmentPayload{
		Templates: entity.TemplateSet{},
		Images:    entity.ImageSet{},
	}
	for _, src := range []map[string]*string{reply.TemplatesBase64, reply.Templates} {
		for key, val := range src {
			slot := entity.TemplateSlot(key)
			if !slot.Valid() {
				g.logger.Debugw("ignoring unknown template slot from agent", "slot", key)
				continue
			}
			b, err := decodeSlot(val)
			if err != nil {
				return nil, &Error{Op: op, Kind: apperr.ErrAgentError, Message: "malformed template " + key, Err: err}
			}
			payload.Templates[slot] = b
		}
	}
	for _, src := range []map[string]*string{reply.ImagesBase64, reply.Images} {
		for key, val := range src {
			slot := entity.ImageSlot(key)
			if !slot.Valid() {
				g.logger.Debugw("ignoring unknown image slot from agent", "slot", key)
				continue
			}
			b, err := decodeSlot(val)
			if err != nil {
				return nil, &Error{Op: op, Kind: apperr.ErrAgentError, Message: "malformed image " + key, Err: err}
			}
			payload.Images[slot] = b
		}
	}
	return payload, nil
}

// decodeSlot maps JSON null to an absent (nil) payload.
func decodeSlot(val *string) ([]byte, error) {
	if val == nil {
		return nil, nil
	}
	s := strings.TrimSpace(*val)
	b, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		b, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	}
	return b, err
}

func (g *HTTPGateway) CreateTemplate(ctx context.Context, req CreateTemplateRequest) (json.RawMessage, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body := map[string]any{
		"template_no":  req.Slot.Position(),
		"capture_type": req.CaptureType,
	}
	return g.call(ctx, "create_template", http.MethodPost, "/api/create_template", body, true)
}

func (g *HTTPGateway) MatchTemplates(ctx context.Context) (json.RawMessage, error) {
	return g.call(ctx, "match_templates", http.MethodPost, "/api/match_templates", struct{}{}, false)
}

func (g *HTTPGateway) Identify(ctx context.Context) (json.RawMessage, error) {
	return g.call(ctx, "identify", http.MethodPost, "/api/identify", nil, false)
}

func (g *HTTPGateway) GetStatus(ctx context.Context) (json.RawMessage, error) {
	return g.call(ctx, "status", http.MethodGet, "/api/status", nil, false)
}

func (g *HTTPGateway) SetConfig(ctx context.Context, options json.RawMessage) (json.RawMessage, error) {
	if err := ValidateOptions(options); err != nil {
		return nil, err
	}
	return g.call(ctx, "config", http.MethodPost, "/api/config", options, false)
}

func (g *HTTPGateway) InitDevice(ctx context.Context) (json.RawMessage, error) {
	return g.call(ctx, "init", http.MethodPost, "/api/init", struct{}{}, false)
}

// call performs one bounded request. With strict set, a 2xx reply carrying
// "success": false is reported as an agent failure as well.
func (g *HTTPGateway) call(ctx context.Context, op, method, path string, body any, strict bool) (json.RawMessage, error) {
	start := time.Now()
	raw, err := g.do(ctx, op, method, path, body, strict)
	g.metrics.ObserveAgentCall(op, outcome(err), time.Since(start))
	if err != nil {
		g.logger.Warnw("agent call failed", "op", op, "err", err, "duration_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	g.logger.Debugw("agent call", "op", op, "bytes", len(raw), "duration_ms", time.Since(start).Milliseconds())
	return raw, nil
}

func (g *HTTPGateway) do(ctx context.Context, op, method, path string, body any, strict bool) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		var data []byte
		switch v := body.(type) {
		case json.RawMessage:
			data = v
		default:
			var err error
			if data, err = json.Marshal(v); err != nil {
				return nil, fmt.Errorf("encode %s request: %w", op, err)
			}
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, g.base+path, reader)
	if err != nil {
		return nil, &Error{Op: op, Kind: apperr.ErrAgentUnreachable, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Kind: classify(err), Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		kind := classify(err)
		if kind == apperr.ErrAgentUnreachable {
			// the connection existed; a broken body is a failed reply
			kind = apperr.ErrAgentError
		}
		return nil, &Error{Op: op, Kind: kind, Status: resp.StatusCode, Err: err}
	}

	var ack struct {
		Success *bool  `json:"success"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(data, &ack)
	msg := ack.Message
	if msg == "" {
		msg = ack.Error
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return nil, &Error{Op: op, Kind: apperr.ErrAgentError, Status: resp.StatusCode, Message: msg}
	}
	if !json.Valid(data) {
		return nil, &Error{Op: op, Kind: apperr.ErrAgentError, Status: resp.StatusCode, Message: "malformed agent reply"}
	}
	if strict && ack.Success != nil && !*ack.Success {
		if msg == "" {
			msg = "agent reported failure"
		}
		return nil, &Error{Op: op, Kind: apperr.ErrAgentError, Status: resp.StatusCode, Message: msg}
	}
	return json.RawMessage(data), nil
}

// classify separates "never connected" from "connected but too slow".
func classify(err error) error {
	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return apperr.ErrAgentUnreachable
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.ErrAgentTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.ErrAgentTimeout
	}
	return apperr.ErrAgentUnreachable
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperr.ErrAgentUnreachable):
		return "unreachable"
	case errors.Is(err, apperr.ErrAgentTimeout):
		return "timeout"
	case errors.Is(err, apperr.ErrInvalidRequest):
		return "invalid"
	default:
		return "agent_error"
	}
}

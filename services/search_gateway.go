package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Modeva-Ecommerce/modeva-discovery/discovery"
	"github.com/Modeva-Ecommerce/modeva-discovery/models"
)

const maxCatalogResponseBytes = 8 << 20

// HTTPSearchGateway calls the catalog's GET /store/products endpoint.
type HTTPSearchGateway struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

type GatewayOption func(*HTTPSearchGateway)

func WithHTTPClient(client *http.Client) GatewayOption {
	return func(g *HTTPSearchGateway) {
		if client != nil {
			g.client = client
		}
	}
}

// WithRateLimit throttles outgoing searches to rps with the given burst.
// A zero rps disables throttling.
func WithRateLimit(rps float64, burst int) GatewayOption {
	return func(g *HTTPSearchGateway) {
		if rps <= 0 {
			g.limiter = nil
			return
		}
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithGatewayLogger(logger *zap.Logger) GatewayOption {
	return func(g *HTTPSearchGateway) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewHTTPSearchGateway targets baseURL, the catalog API root
// (e.g. http://localhost:8081/api/v1).
func NewHTTPSearchGateway(baseURL string, opts ...GatewayOption) *HTTPSearchGateway {
	g := &HTTPSearchGateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// catalogEnvelope is the ApiResponse shape with typed data.
type catalogEnvelope struct {
	Message   string                     `json:"message"`
	Data      []models.StorefrontProduct `json:"data"`
	Error     bool                       `json:"error"`
	ErrorKind string                     `json:"error_kind"`
	Meta      *models.Pagination         `json:"meta"`
}

func (g *HTTPSearchGateway) Search(ctx context.Context, req models.SearchRequest) (models.ResultPage, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return models.ResultPage{}, discovery.NetworkError(fmt.Errorf("throttled: %w", err))
		}
	}

	url := g.baseURL + "/store/products?" + req.Values().Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return models.ResultPage{}, discovery.InvalidRequestError(0, fmt.Errorf("build request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")

	g.logger.Debug("catalog search", zap.String("url", url))

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return models.ResultPage{}, discovery.NetworkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogResponseBytes))
	if err != nil {
		return models.ResultPage{}, discovery.NetworkError(fmt.Errorf("read response: %w", err))
	}

	var env catalogEnvelope
	decodeErr := json.Unmarshal(body, &env)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.ResultPage{}, classifyStatus(resp.StatusCode, env.Message)
	}
	if decodeErr != nil {
		return models.ResultPage{}, discovery.ServerError(resp.StatusCode, fmt.Errorf("decode response: %w", decodeErr))
	}
	if env.Meta == nil {
		return models.ResultPage{}, discovery.ServerError(resp.StatusCode, errors.New("response has no pagination metadata"))
	}

	page := models.ResultPage{
		Items:      env.Data,
		Page:       env.Meta.Page,
		TotalCount: env.Meta.Total,
		TotalPages: env.Meta.TotalPages,
	}
	if page.Items == nil {
		page.Items = []models.StorefrontProduct{}
	}
	if page.Page == 0 {
		page.Page = req.Page
	}
	return page, nil
}

func classifyStatus(status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	err := errors.New(message)
	switch {
	case status == http.StatusRequestTimeout:
		return discovery.NetworkError(fmt.Errorf("status %d: %w", status, err))
	case status == http.StatusTooManyRequests || status >= 500:
		return discovery.ServerError(status, err)
	default:
		return discovery.InvalidRequestError(status, err)
	}
}

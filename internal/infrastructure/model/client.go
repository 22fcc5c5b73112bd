package model

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/CSingh26/ReliScore/internal/config"
	"github.com/CSingh26/ReliScore/internal/domain/models"
	"github.com/CSingh26/ReliScore/internal/domain/service"
	"github.com/CSingh26/ReliScore/internal/infrastructure/monitoring"
	"github.com/CSingh26/ReliScore/pkg/constants"
	"github.com/CSingh26/ReliScore/pkg/errors"
	"github.com/CSingh26/ReliScore/pkg/logger"
)

const modelInfoCacheKey = "model_info"

// TokenProvider resolves the bearer credential attached to scorer requests.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

// StaticTokenProvider returns a fixed credential from configuration. An
// empty token means no Authorization header is sent.
type StaticTokenProvider struct {
	token string
}

// NewStaticTokenProvider creates a provider for a configured token.
func NewStaticTokenProvider(token string) *StaticTokenProvider {
	return &StaticTokenProvider{token: token}
}

// Token implements TokenProvider.
func (p *StaticTokenProvider) Token(ctx context.Context) (string, error) {
	return p.token, nil
}

// Client talks to the remote model service. Remote calls are bounded by a
// per-call timeout and retried with linear backoff up to a fixed ceiling; an
// exhausted budget degrades to the local heuristic scorer, so a complete
// batch is always produced. The client performs no persistence.
type Client struct {
	cfg       *config.ScorerConfig
	http      *http.Client
	tokens    TokenProvider
	heuristic *HeuristicScorer
	infoCache *gocache.Cache
	metrics   *monitoring.Metrics
	log       logger.Logger

	// sleep is swapped out in tests to avoid real backoff delays.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a scoring client. tokens and metrics may be nil.
func NewClient(cfg *config.ScorerConfig, tokens TokenProvider, metrics *monitoring.Metrics, log logger.Logger) *Client {
	if tokens == nil {
		tokens = NewStaticTokenProvider(cfg.BearerToken)
	}
	infoTTL := time.Duration(cfg.InfoCacheTTL) * time.Second
	return &Client{
		cfg:       cfg,
		http:      &http.Client{Timeout: cfg.CallTimeout()},
		tokens:    tokens,
		heuristic: NewHeuristicScorer(),
		infoCache: gocache.New(infoTTL, 2*infoTTL),
		metrics:   metrics,
		log:       log.WithComponent("scoring_client"),
		sleep:     sleepCtx,
	}
}

// scoreItem is the wire shape of one score_batch request item. Declared but
// absent features are sent as explicit nulls so the model service can
// distinguish "absent" from "zero".
type scoreItem struct {
	DriveID  string              `json:"drive_id"`
	Day      string              `json:"day"`
	Features map[string]*float64 `json:"features"`
}

type scoreBatchRequest struct {
	Items []scoreItem `json:"items"`
}

type scoreResponseItem struct {
	DriveID      string              `json:"drive_id"`
	Day          string              `json:"day"`
	RiskScore    float64             `json:"risk_score"`
	RiskBucket   string              `json:"risk_bucket"`
	TopReasons   []models.ReasonCode `json:"top_reasons"`
	ModelVersion string              `json:"model_version"`
	ScoredAt     time.Time           `json:"scored_at"`
}

// ModelInfo fetches the active model's declared contract, cached for the
// configured TTL.
func (c *Client) ModelInfo(ctx context.Context) (*service.ModelInfo, error) {
	if cached, ok := c.infoCache.Get(modelInfoCacheKey); ok {
		return cached.(*service.ModelInfo), nil
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodGet, c.cfg.BaseURL+"/model/info", nil)
	if err != nil {
		return nil, errors.ErrScorerUnavailable.Wrap(err)
	}
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.ErrScorerUnavailable.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ErrScorerUnavailable.WithMessagef("model/info returned %d", resp.StatusCode)
	}

	var info service.ModelInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, errors.ErrMalformedResponse.Wrap(err)
	}
	if info.ModelVersion == "" || len(info.Features) == 0 {
		return nil, errors.ErrMalformedResponse.WithMessagef("model/info missing version or features")
	}

	c.infoCache.SetDefault(modelInfoCacheKey, &info)
	return &info, nil
}

// ScoreBatch scores the rows remotely, retrying failed attempts with a
// linearly increasing delay. When every attempt fails the local heuristic
// scores the batch instead; the pipeline never surfaces a transient remote
// failure.
func (c *Client) ScoreBatch(ctx context.Context, rows []models.FeatureRow) ([]models.Prediction, bool, error) {
	if len(rows) == 0 {
		return nil, false, nil
	}

	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		batch, err := c.tryScoreBatch(ctx, rows)
		if err == nil {
			return batch, false, nil
		}
		lastErr = err
		c.metrics.ObserveScorerAttemptFailure()
		c.log.Warn(ctx, "remote scoring attempt failed", logger.Fields{
			"attempt":      attempt,
			"max_attempts": c.cfg.MaxAttempts,
			"error":        err.Error(),
		})

		if attempt == c.cfg.MaxAttempts {
			break
		}
		if err := c.sleep(ctx, c.cfg.BaseDelay()*time.Duration(attempt)); err != nil {
			return nil, false, err
		}
	}

	c.metrics.ObserveFallbackEngaged()
	c.log.Warn(ctx, "remote scorer exhausted, using heuristic fallback", logger.Fields{
		"error": lastErr.Error(),
	})
	return c.heuristic.ScoreBatch(rows), true, nil
}

// tryScoreBatch performs one attempt: resolve the model contract, normalize
// the vectors against it, post the batch, and structurally validate the
// response. Any failure, malformed responses included, consumes the attempt.
func (c *Client) tryScoreBatch(ctx context.Context, rows []models.FeatureRow) ([]models.Prediction, error) {
	info, err := c.ModelInfo(ctx)
	if err != nil {
		return nil, err
	}

	payload := scoreBatchRequest{Items: make([]scoreItem, 0, len(rows))}
	for _, row := range rows {
		payload.Items = append(payload.Items, scoreItem{
			DriveID:  row.DriveID,
			Day:      row.Day.Format(constants.DayFormat),
			Features: normalizeFeatures(row.Features, info.Features),
		})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.ErrScorerUnavailable.Wrap(err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.cfg.CallTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.cfg.BaseURL+"/score_batch", bytes.NewReader(body))
	if err != nil {
		return nil, errors.ErrScorerUnavailable.Wrap(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.authorize(ctx, req); err != nil {
		return nil, err
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveScorerCallDuration(time.Since(started))
	if err != nil {
		return nil, errors.ErrScorerUnavailable.Wrap(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.ErrScorerUnavailable.WithMessagef("score_batch returned %d", resp.StatusCode)
	}

	var items []scoreResponseItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, errors.ErrMalformedResponse.Wrap(err)
	}
	return validateBatch(items, rows)
}

func (c *Client) authorize(ctx context.Context, req *http.Request) error {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return errors.ErrScorerUnavailable.Wrap(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// normalizeFeatures projects a vector onto the declared feature list:
// undeclared features are dropped, declared-but-absent features become
// explicit nulls.
func normalizeFeatures(vec models.FeatureVector, declared []string) map[string]*float64 {
	out := make(map[string]*float64, len(declared))
	for _, name := range declared {
		if value, ok := vec[name]; ok {
			v := value
			out[name] = &v
		} else {
			out[name] = nil
		}
	}
	return out
}

// validateBatch enforces the response contract: one item per input row with
// a matching (drive, day) pairing, an in-range finite probability, and an
// enumerated bucket. A violation fails the whole attempt rather than passing
// through silently.
func validateBatch(items []scoreResponseItem, rows []models.FeatureRow) ([]models.Prediction, error) {
	if len(items) != len(rows) {
		return nil, errors.ErrMalformedResponse.WithMessagef(
			"expected %d items, got %d", len(rows), len(items))
	}

	inputDays := make(map[string]time.Time, len(rows))
	for _, row := range rows {
		inputDays[row.DriveID] = row.Day
	}

	batch := make([]models.Prediction, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, item := range items {
		day, ok := inputDays[item.DriveID]
		if !ok {
			return nil, errors.ErrMalformedResponse.WithMessagef("unknown drive %q in response", item.DriveID)
		}
		if seen[item.DriveID] {
			return nil, errors.ErrMalformedResponse.WithMessagef("duplicate drive %q in response", item.DriveID)
		}
		seen[item.DriveID] = true

		if item.Day != day.Format(constants.DayFormat) {
			return nil, errors.ErrMalformedResponse.WithMessagef(
				"drive %q scored for day %q, expected %q", item.DriveID, item.Day, day.Format(constants.DayFormat))
		}
		if math.IsNaN(item.RiskScore) || item.RiskScore < 0 || item.RiskScore > 1 {
			return nil, errors.ErrMalformedResponse.WithMessagef(
				"drive %q has out-of-range risk score %v", item.DriveID, item.RiskScore)
		}
		bucket := constants.RiskBucket(item.RiskBucket)
		if !bucket.Valid() {
			return nil, errors.ErrMalformedResponse.WithMessagef(
				"drive %q has unknown risk bucket %q", item.DriveID, item.RiskBucket)
		}
		if item.ModelVersion == "" {
			return nil, errors.ErrMalformedResponse.WithMessagef("drive %q missing model version", item.DriveID)
		}

		scoredAt := item.ScoredAt
		if scoredAt.IsZero() {
			scoredAt = time.Now().UTC()
		}
		batch = append(batch, models.Prediction{
			DriveID:      item.DriveID,
			Day:          day,
			RiskScore:    item.RiskScore,
			RiskBucket:   bucket,
			TopReasons:   item.TopReasons,
			ModelVersion: item.ModelVersion,
			ScoredAt:     scoredAt,
		})
	}
	return batch, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

var _ service.BatchScorer = (*Client)(nil)

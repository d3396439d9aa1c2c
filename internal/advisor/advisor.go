// Package advisor writes short reviewer notes for KYC profiles and match suggestions.
// Notes are advisory text only; they never change a score, tier or match.
package advisor

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"fleet-crm/internal/constants"
	"fleet-crm/internal/models"
	"fleet-crm/internal/prompts"
	"fleet-crm/pkg/circuit"
	errs "fleet-crm/pkg/errors"
	"fleet-crm/pkg/logging"
	"fleet-crm/pkg/metrics"
)

var (
	// ErrDisabled is returned when no API key is configured.
	ErrDisabled = errors.New("advisor disabled: OPENAI_API_KEY not set")
	// ErrBudgetExceeded is returned once the monthly spend limit is reached.
	ErrBudgetExceeded = errors.New("advisor monthly budget exceeded")
)

// ChatClient is the subset of *openai.Client the advisor needs.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Config struct {
	APIKey          string
	Model           string
	MaxTokens       int
	Timeout         time.Duration
	MonthlyLimitUSD float64
}

func DefaultConfig() Config {
	return Config{Model: openai.GPT4oMini, MaxTokens: 300, Timeout: 30 * time.Second, MonthlyLimitUSD: 20}
}

// Note is a generated reviewer note.
type Note struct {
	Text             string    `json:"text"`
	Model            string    `json:"model"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	Cached           bool      `json:"cached"`
	CreatedAt        time.Time `json:"created_at"`
}

type Advisor struct {
	client  ChatClient
	cfg     Config
	prompts *prompts.Manager
	costs   *CostTracker
	breaker *circuit.Breaker
	log     *logging.ComponentLogger

	mu    sync.RWMutex
	cache map[string]Note

	requests *metrics.Counter
	failures *metrics.Counter
}

// New builds an advisor backed by the OpenAI API. Without an API key every call returns ErrDisabled.
func New(cfg Config, logger *logging.Logger) (*Advisor, error) {
	var client ChatClient
	if cfg.APIKey != "" {
		client = openai.NewClient(cfg.APIKey)
	}
	return NewWithClient(client, cfg, logger)
}

// NewWithClient is used by tests and by callers that configure the client themselves.
func NewWithClient(client ChatClient, cfg Config, logger *logging.Logger) (*Advisor, error) {
	def := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	pm, err := prompts.NewManager()
	if err != nil {
		return nil, err
	}

	bcfg := circuit.DefaultConfig("openai")
	bcfg.OperationTimeout = cfg.Timeout
	bcfg.OpenFor = constants.AdvisorOpenFor
	bcfg.FailureRate = constants.AdvisorCircuitFailureRate
	return &Advisor{
		client:   client,
		cfg:      cfg,
		prompts:  pm,
		costs:    NewCostTracker(),
		breaker:  circuit.New(bcfg, logger),
		log:      logger.WithComponent("advisor"),
		cache:    make(map[string]Note),
		requests: metrics.Default.Counter("advisor_requests_total", "Chat completions requested"),
		failures: metrics.Default.Counter("advisor_failures_total", "Chat completions that failed"),
	}, nil
}

func (a *Advisor) Enabled() bool { return a.client != nil }

func (a *Advisor) CostStats() CostStats { return a.costs.Stats() }

type kycPromptData struct {
	models.KYCProfile
	Name string
}

// KYCNote summarizes a KYC profile for the reviewer.
func (a *Advisor) KYCNote(ctx context.Context, name string, p models.KYCProfile) (Note, error) {
	user, err := a.prompts.Render(prompts.KYCUser, kycPromptData{KYCProfile: p, Name: name})
	if err != nil {
		return Note{}, err
	}
	return a.complete(ctx, "KYCNote", prompts.KYCSystem, user)
}

// MatchNote explains a contact↔company suggestion.
func (a *Advisor) MatchNote(ctx context.Context, r models.MatchResult) (Note, error) {
	user, err := a.prompts.Render(prompts.MatchUser, r)
	if err != nil {
		return Note{}, err
	}
	return a.complete(ctx, "MatchNote", prompts.MatchSystem, user)
}

func (a *Advisor) complete(ctx context.Context, op, systemTpl, user string) (Note, error) {
	if !a.Enabled() {
		return Note{}, ErrDisabled
	}
	if a.costs.Exceeded(a.cfg.MonthlyLimitUSD) {
		return Note{}, ErrBudgetExceeded
	}
	system, err := a.prompts.Render(systemTpl, nil)
	if err != nil {
		return Note{}, err
	}

	key := cacheKey(a.cfg.Model, system, user)
	a.mu.RLock()
	if n, ok := a.cache[key]; ok {
		a.mu.RUnlock()
		n.Cached = true
		return n, nil
	}
	a.mu.RUnlock()

	var resp openai.ChatCompletionResponse
	a.requests.Inc(1)
	err = a.breaker.Do(ctx, func(ctx context.Context) error {
		var cerr error
		resp, cerr = a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: a.cfg.Model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			MaxTokens:   a.cfg.MaxTokens,
			Temperature: 0.2,
		})
		return cerr
	})
	if err != nil {
		a.failures.Inc(1)
		a.log.Warn("chat completion failed", logging.String("op", op), logging.Error(err))
		return Note{}, errs.NewExternal("advisor."+op, "openai", "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		a.failures.Inc(1)
		return Note{}, errs.NewExternal("advisor."+op, "openai", "empty response", nil)
	}

	a.costs.AddUsage(resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
	n := Note{
		Text:             strings.TrimSpace(resp.Choices[0].Message.Content),
		Model:            a.cfg.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		CreatedAt:        time.Now().UTC(),
	}
	a.mu.Lock()
	a.cache[key] = n
	a.mu.Unlock()

	a.log.Debug("note generated", logging.String("op", op), logging.Int("tokens", n.PromptTokens+n.CompletionTokens))
	return n, nil
}

func cacheKey(parts ...string) string {
	b, _ := json.Marshal(parts)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Package deepseek is a minimal chat-completions client for DeepSeek's
// OpenAI-compatible API, specialised to clip candidate scoring.
package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/sermonclips-backend/internal/pkg/logger"
	"github.com/yungbote/sermonclips-backend/internal/utils"
)

const (
	promptCostPer1M     = 0.14
	completionCostPer1M = 0.28
	trimTextLimit       = 1500
)

// ClientError marks any failure of the scoring call, from configuration to
// transport to response parsing. Callers treat it as "LLM unavailable" and
// fall back to heuristics.
type ClientError struct {
	Msg string
	Err error
}

func (e *ClientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ClientError) Unwrap() error { return e.Err }

func clientErr(msg string) error              { return &ClientError{Msg: msg} }
func clientErrWrap(msg string, err error) error { return &ClientError{Msg: msg, Err: err} }

// IsClientError reports whether err is (or wraps) a ClientError.
func IsClientError(err error) bool {
	var ce *ClientError
	return errors.As(err, &ce)
}

// Candidate is one clip submitted for scoring.
type Candidate struct {
	ID                string `json:"id"`
	Text              string `json:"text"`
	ApproxDurationSec int    `json:"approx_duration_sec"`
}

// TrimSuggestion is the raw trim proposal as returned by the model.
type TrimSuggestion struct {
	StartOffsetSec float64  `json:"start_offset_sec"`
	EndOffsetSec   float64  `json:"end_offset_sec"`
	Confidence     *float64 `json:"confidence,omitempty"`
}

// ScoredClip is one validated scoring result. Score is clamped to [0, 100];
// Trim and TrimConfidence are nil when the model omitted them.
type ScoredClip struct {
	ID             string
	Score          float64
	Reason         string
	Trim           *TrimSuggestion
	TrimConfidence *float64
}

// TokenUsage summarises the billing-relevant counters of one call. Cache
// counters stay nil when the provider does not report them.
type TokenUsage struct {
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	OutputTokens     int     `json:"output_tokens"`
	CacheHitTokens   *int    `json:"cache_hit_tokens"`
	CacheMissTokens  *int    `json:"cache_miss_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`
}

// ScoreResult bundles the usable scores with the call's token usage.
type ScoreResult struct {
	Clips      []ScoredClip
	TokenUsage TokenUsage
}

type Client interface {
	ScoreClipCandidates(ctx context.Context, candidates []Candidate) (*ScoreResult, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient reads its configuration from the environment. A missing API key
// is not an error here: scoring calls fail with a ClientError instead, so the
// heuristic-only pipeline keeps working.
func NewClient(log *logger.Logger) Client {
	clientLog := log.With("client", "deepseek")
	timeoutSec := utils.GetEnvAsInt("DEEPSEEK_TIMEOUT_SECONDS", 60, clientLog)
	if timeoutSec <= 0 {
		timeoutSec = 60
	}
	return &client{
		log:        clientLog,
		baseURL:    utils.GetEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com", clientLog),
		apiKey:     utils.GetEnv("DEEPSEEK_API_KEY", "", nil),
		model:      utils.GetEnv("DEEPSEEK_MODEL", "deepseek-chat", clientLog),
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

// resolveEndpoint appends the chat-completions path unless the base URL
// already carries it.
func resolveEndpoint(baseURL string) string {
	base := strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

// trimText collapses whitespace and, above the limit, keeps head, middle and
// tail joined by ellipses so the model still sees the clip's arc. Lengths are
// in runes so accented text is never cut mid-character.
func trimText(text string, limit int) string {
	normalized := strings.Join(strings.Fields(text), " ")
	runes := []rune(normalized)
	if len(runes) <= limit {
		return normalized
	}
	if limit < 300 {
		return string(runes[:limit])
	}
	const sep = " ... "
	partLen := (limit - 2*len(sep)) / 3
	if partLen < 200 {
		partLen = 200
	}
	middleLen := limit - partLen*2 - 2*len(sep)
	if middleLen < 50 {
		middleLen = 50
	}
	middleStart := len(runes)/2 - middleLen/2
	if middleStart < 0 {
		middleStart = 0
	}
	middleEnd := middleStart + middleLen
	if middleEnd > len(runes) {
		middleEnd = len(runes)
	}
	combined := string(runes[:partLen]) + sep + string(runes[middleStart:middleEnd]) + sep + string(runes[len(runes)-partLen:])
	if cr := []rune(combined); len(cr) > limit {
		combined = string(cr[:limit])
	}
	return combined
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

func (c *client) ScoreClipCandidates(ctx context.Context, candidates []Candidate) (*ScoreResult, error) {
	if strings.TrimSpace(c.apiKey) == "" {
		return nil, clientErr("deepseek api key not configured")
	}
	if strings.TrimSpace(c.baseURL) == "" {
		return nil, clientErr("deepseek base url not configured")
	}
	if strings.TrimSpace(c.model) == "" {
		return nil, clientErr("deepseek model not configured")
	}

	prompt := make([]Candidate, 0, len(candidates))
	for _, cand := range candidates {
		prompt = append(prompt, Candidate{
			ID:                cand.ID,
			Text:              trimText(cand.Text, trimTextLimit),
			ApproxDurationSec: cand.ApproxDurationSec,
		})
	}

	userPrompt, err := scoringUserPrompt(prompt)
	if err != nil {
		return nil, clientErrWrap("failed to encode candidates", err)
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: scoringSystemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, clientErrWrap("failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, resolveEndpoint(c.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, clientErrWrap("failed to build request", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, clientErrWrap("deepseek request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, clientErrWrap("failed to read response", err)
	}
	if resp.StatusCode >= 300 {
		c.log.Warn("deepseek http error", "status", resp.StatusCode, "body", truncate(string(raw), 500))
		return nil, clientErr(fmt.Sprintf("deepseek http error %d", resp.StatusCode))
	}

	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		c.log.Warn("deepseek response not json", "body", truncate(string(raw), 500))
		return nil, clientErrWrap("deepseek response invalid json", err)
	}

	usage := extractTokenUsage(payload)

	content, err := extractMessageContent(payload)
	if err != nil {
		return nil, err
	}
	parsed, err := coerceJSON(content)
	if err != nil {
		c.log.Warn("deepseek content not json", "content", truncate(content, 500))
		return nil, clientErrWrap("deepseek content invalid json", err)
	}

	items, err := resultList(parsed)
	if err != nil {
		return nil, err
	}
	clips := parseScoredClips(items)
	if len(clips) == 0 {
		return nil, clientErr("deepseek returned no usable scores")
	}

	c.log.Info("deepseek scoring tokens",
		"prompt", usage.PromptTokens,
		"output", usage.OutputTokens,
		"total", usage.TotalTokens,
		"cache_hit", formatUsage(usage.CacheHitTokens),
		"cache_miss", formatUsage(usage.CacheMissTokens),
		"cost_usd", fmt.Sprintf("%.6f", usage.EstimatedCostUSD),
	)
	return &ScoreResult{Clips: clips, TokenUsage: usage}, nil
}

func extractMessageContent(payload map[string]any) (string, error) {
	choices, _ := payload["choices"].([]any)
	if len(choices) == 0 {
		return "", clientErr("deepseek response missing choices")
	}
	first, _ := choices[0].(map[string]any)
	message, _ := first["message"].(map[string]any)
	content, _ := message["content"].(string)
	if content == "" {
		return "", clientErr("deepseek response missing content")
	}
	return content, nil
}

// coerceJSON parses the content as-is, then falls back to the outermost
// [...] or {...} span so prose-wrapped JSON still parses.
func coerceJSON(content string) (any, error) {
	var parsed any
	if err := json.Unmarshal([]byte(content), &parsed); err == nil {
		return parsed, nil
	}
	if start, end := strings.Index(content, "["), strings.LastIndex(content, "]"); start != -1 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err == nil {
			return parsed, nil
		}
	}
	start, end := strings.Index(content, "{"), strings.LastIndex(content, "}")
	if start != -1 && end > start {
		if err := json.Unmarshal([]byte(content[start:end+1]), &parsed); err == nil {
			return parsed, nil
		}
	}
	return nil, fmt.Errorf("no json payload found")
}

func resultList(parsed any) ([]any, error) {
	if obj, ok := parsed.(map[string]any); ok {
		if list, ok := obj["results"].([]any); ok {
			return list, nil
		}
		if list, ok := obj["clips"].([]any); ok {
			return list, nil
		}
		return nil, nil
	}
	list, ok := parsed.([]any)
	if !ok {
		return nil, clientErr("deepseek json must be a list")
	}
	return list, nil
}

func parseScoredClips(items []any) []ScoredClip {
	clips := make([]ScoredClip, 0, len(items))
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		id := strings.TrimSpace(stringValue(item["id"]))
		if id == "" {
			continue
		}
		score, ok := floatValue(item["score"])
		if !ok {
			continue
		}
		if score < 0 {
			score = 0
		}
		if score > 100 {
			score = 100
		}

		var trim *TrimSuggestion
		trimConfidenceRaw := item["trim_confidence"]
		if trimMap, ok := item["trim_suggestion"].(map[string]any); ok {
			trim = &TrimSuggestion{}
			if v, ok := floatValue(trimMap["start_offset_sec"]); ok {
				trim.StartOffsetSec = v
			}
			if v, ok := floatValue(trimMap["end_offset_sec"]); ok {
				trim.EndOffsetSec = v
			}
			if v, ok := floatValue(trimMap["confidence"]); ok {
				trim.Confidence = &v
			}
			if trimConfidenceRaw == nil {
				trimConfidenceRaw = trimMap["confidence"]
			}
		}
		var trimConfidence *float64
		if v, ok := floatValue(trimConfidenceRaw); ok {
			trimConfidence = &v
		}

		clips = append(clips, ScoredClip{
			ID:             id,
			Score:          score,
			Reason:         strings.TrimSpace(stringValue(item["reason"])),
			Trim:           trim,
			TrimConfidence: trimConfidence,
		})
	}
	return clips
}

func extractTokenUsage(payload map[string]any) TokenUsage {
	usage, _ := payload["usage"].(map[string]any)

	promptTokens := usageValue(usage, "prompt_tokens", "input_tokens")
	completionTokens := usageValue(usage, "completion_tokens", "output_tokens")

	prompt := 0
	if promptTokens != nil {
		prompt = *promptTokens
	}
	completion := 0
	if completionTokens != nil {
		completion = *completionTokens
	}

	total := prompt + completion
	if v := usageValue(usage, "total_tokens"); v != nil {
		total = *v
	}
	output := completion
	if v := usageValue(usage, "output_tokens"); v != nil {
		output = *v
	}

	return TokenUsage{
		PromptTokens:     prompt,
		CompletionTokens: completion,
		OutputTokens:     output,
		CacheHitTokens:   usageValue(usage, "prompt_cache_hit_tokens", "cache_hit_tokens", "cache_hit"),
		CacheMissTokens:  usageValue(usage, "prompt_cache_miss_tokens", "cache_miss_tokens", "cache_miss"),
		TotalTokens:      total,
		EstimatedCostUSD: float64(prompt)/1_000_000.0*promptCostPer1M + float64(completion)/1_000_000.0*completionCostPer1M,
	}
}

func usageValue(usage map[string]any, keys ...string) *int {
	for _, key := range keys {
		raw, ok := usage[key]
		if !ok || raw == nil {
			continue
		}
		if v, ok := floatValue(raw); ok {
			n := int(v)
			return &n
		}
		return nil
	}
	return nil
}

func floatValue(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

func stringValue(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

func formatUsage(v *int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.Itoa(*v)
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"challenge-streak-system/models"
	"challenge-streak-system/utils"
)

// Verdict is the closed outcome of a verification attempt. Anything the model
// returns that is not a strict boolean lands on VerdictIndeterminate, which
// callers must treat as not verified.
type Verdict int

const (
	VerdictNotVerified Verdict = iota
	VerdictVerified
	VerdictIndeterminate
)

// Result is the normalized answer of the vision model.
// Verified is true only for VerdictVerified.
type Result struct {
	Verdict    Verdict `json:"-"`
	Verified   bool    `json:"verified"`
	Confidence float64 `json:"confidence"`
	Reasoning  string  `json:"reasoning"`
}

// ChallengeInfo is the subset of a challenge the verifier needs. It may be
// reconstructed from cached relationship fields when the catalog row is gone.
type ChallengeInfo struct {
	Title       string
	Description string
	Category    string
}

const (
	verifyTimeout = 45 * time.Second
	maxPhotoBytes = 8 << 20 // 8MB

	systemInstruction = "You verify photos submitted as proof of completing real-world challenges. " +
		"Be strict: a false positive (accepting an unrelated photo) is worse than a false negative. " +
		"If the photo is ambiguous, unrelated, a screenshot, or likely not taken by the submitter, reject it. " +
		`Reply with a single JSON object: {"verified": true|false, "confidence": 0.0-1.0, "reasoning": "one or two sentences"}.`
)

// Verifier talks to an OpenAI-compatible vision chat endpoint. A missing API
// key is a valid configuration state; Verify then always fails closed.
type Verifier struct {
	apiKey string
	apiURL string
	model  string

	client      *http.Client // oracle calls
	photoClient *http.Client // photo downloads
}

func NewVerifier(apiKey, apiURL, model string) *Verifier {
	if apiURL == "" {
		apiURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Verifier{
		apiKey:      apiKey,
		apiURL:      strings.TrimRight(apiURL, "/"),
		model:       model,
		client:      &http.Client{Timeout: verifyTimeout},
		photoClient: utils.HTTPClient,
	}
}

func NewVerifierFromEnv() *Verifier {
	return NewVerifier(
		os.Getenv("VISION_API_KEY"),
		os.Getenv("VISION_API_URL"),
		os.Getenv("VISION_MODEL"),
	)
}

func (v *Verifier) Configured() bool {
	return v.apiKey != ""
}

// Verify renders a verdict for a completion photo. It never returns an error:
// every failure path (no photo, no credential, network, parse) collapses to a
// fail-closed Result with the diagnostic in Reasoning.
func (v *Verifier) Verify(ctx context.Context, ch ChallengeInfo, photoURL string, loc *models.GeoPoint) Result {
	if photoURL == "" {
		return failClosed("no photo provided")
	}
	if !v.Configured() {
		log.Println("⚠️  [VERIFY] VISION_API_KEY not set, failing closed")
		return failClosed("verification service not configured")
	}

	ctx, cancel := context.WithTimeout(ctx, verifyTimeout)
	defer cancel()

	photoData, contentType, err := v.fetchPhoto(ctx, photoURL)
	if err != nil {
		return failClosed(fmt.Sprintf("could not retrieve photo: %v", err))
	}

	reply, err := v.callModel(ctx, v.buildPrompt(ch, loc), photoData, contentType)
	if err != nil {
		return failClosed(fmt.Sprintf("verification call failed: %v", err))
	}

	return parseVerdict(reply)
}

func failClosed(reason string) Result {
	return Result{Verdict: VerdictNotVerified, Verified: false, Confidence: 0, Reasoning: reason}
}

func (v *Verifier) fetchPhoto(ctx context.Context, photoURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := v.photoClient.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("photo fetch returned status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes))
	if err != nil {
		return nil, "", err
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("photo body was empty")
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" || !strings.HasPrefix(contentType, "image/") {
		contentType = http.DetectContentType(data)
	}
	return data, contentType, nil
}

func (v *Verifier) buildPrompt(ch ChallengeInfo, loc *models.GeoPoint) string {
	rule := SelectContext(ch.Title, ch.Description, ch.Category)

	var b strings.Builder
	fmt.Fprintf(&b, "Challenge: %s\n", ch.Title)
	if ch.Description != "" {
		fmt.Fprintf(&b, "Details: %s\n", ch.Description)
	}
	if ch.Category != "" {
		fmt.Fprintf(&b, "Category: %s\n", ch.Category)
	}
	fmt.Fprintf(&b, "\nWhat to look for: %s\n", rule.Instruction)
	if loc != nil {
		// Device GPS is noisy; a hint for plausibility, not a hard check.
		fmt.Fprintf(&b, "\nThe photo was reportedly taken near latitude %.2f, longitude %.2f (approximate).\n", loc.Latitude, loc.Longitude)
	}
	b.WriteString("\nDoes the attached photo verify this challenge was completed?")
	return b.String()
}

func (v *Verifier) callModel(ctx context.Context, prompt string, photo []byte, contentType string) (string, error) {
	dataURI := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(photo))

	payload := map[string]any{
		"model": v.model,
		"messages": []map[string]any{
			{"role": "system", "content": systemInstruction},
			{
				"role": "user",
				"content": []map[string]any{
					{"type": "text", "text": prompt},
					{"type": "image_url", "image_url": map[string]any{"url": dataURI}},
				},
			},
		},
		"max_tokens": 300,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.apiURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("model returned status %d: %.200s", resp.StatusCode, respBody)
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("unexpected response shape: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// parseVerdict extracts the first JSON object from the model's free-text reply
// (which may wrap it in markdown or commentary) and coerces it into a Result.
func parseVerdict(reply string) Result {
	raw, ok := extractJSONObject(reply)
	if !ok {
		return failClosed("could not find a JSON verdict in the model reply")
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return failClosed(fmt.Sprintf("verdict was not valid JSON: %v", err))
	}

	verdict := coerceVerified(fields["verified"])
	confidence := coerceConfidence(fields["confidence"])
	reasoning, _ := fields["reasoning"].(string)
	if reasoning == "" {
		reasoning = "no reasoning provided"
	}

	return Result{
		Verdict:    verdict,
		Verified:   verdict == VerdictVerified,
		Confidence: confidence,
		Reasoning:  reasoning,
	}
}

// coerceVerified applies strict boolean coercion: only literal true/"true"
// and false/"false" are trusted. Anything else is anomalous and lands on
// VerdictIndeterminate, which reads as not verified.
func coerceVerified(value any) Verdict {
	switch v := value.(type) {
	case bool:
		if v {
			return VerdictVerified
		}
		return VerdictNotVerified
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true":
			return VerdictVerified
		case "false":
			return VerdictNotVerified
		}
	}
	log.Printf("⚠️  [VERIFY] anomalous verified value %v (%T), treating as not verified", value, value)
	return VerdictIndeterminate
}

func coerceConfidence(value any) float64 {
	var c float64
	switch v := value.(type) {
	case float64:
		c = v
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0
		}
		c = parsed
	default:
		return 0
	}
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

// extractJSONObject returns the first balanced {...} in s, skipping braces
// inside JSON strings.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

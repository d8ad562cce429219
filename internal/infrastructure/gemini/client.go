package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	_ "image/gif"
	_ "image/png"

	"github.com/healthpal/backend/internal/domain"
	"golang.org/x/time/rate"
)

// jpegQuality is the fixed compression factor applied to every submitted
// image before base64 encoding.
const jpegQuality = 80

// scanPrompt constrains the model to a single-line JSON object so the reply
// can be decoded with a strict schema instead of scraped from prose.
const scanPrompt = `You are helping a health app log food from an image.
Respond with ONLY a single JSON object on one line, no markdown, no backticks.
JSON schema:
- If the image is usable: {"calories": <integer>, "label": "<short food name 2-5 words>"}
- If the image is not usable: {"error": "ErrorInScanning"}

Rules:
- calories must be an INTEGER (round your estimate).
- label must be short and human-friendly (e.g., "grilled chicken salad").
- Do not include units, explanations, or any extra keys.`

// scanErrorToken is the sentinel string the model emits for an
// uninterpretable image.
const scanErrorToken = "ErrorInScanning"

// Client handles communication with the Gemini generateContent API.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	model       string
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new Gemini API client.
func NewClient(baseURL, model string) *Client {
	// One scan per user action; the limiter only guards against a stuck UI
	// hammering the endpoint.
	limiter := rate.NewLimiter(rate.Limit(1), 3)

	return &Client{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL:     baseURL,
		model:       model,
		rateLimiter: limiter,
	}
}

// SetDebug enables verbose request/response logging.
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// request/response shapes for the generateContent endpoint.

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

// generateResponse is the documented envelope: candidates -> content ->
// parts -> text. Fields the caller never reads are omitted.
type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// scanReply is the constrained schema the prompt demands from the model.
// Calories is a pointer so "absent" and "zero" stay distinguishable.
type scanReply struct {
	Calories *int   `json:"calories"`
	Label    string `json:"label"`
	Error    string `json:"error"`
}

// Analyze submits a food photo and returns the model's calorie estimate.
// A single attempt is made per call; transport and non-2xx failures return
// ErrAnalysisFailed. A reply the model marks unusable (or one that fails to
// parse) is a normal outcome and comes back as an unusable result, nil error.
func (c *Client) Analyze(ctx context.Context, imageData []byte, apiKey string) (domain.AnalysisResult, error) {
	if strings.TrimSpace(apiKey) == "" {
		return domain.UnusableResult(), domain.ErrNoCredentialConfigured
	}

	encoded, err := encodeJPEG(imageData)
	if err != nil {
		return domain.UnusableResult(), fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}

	payload := generateRequest{
		Contents: []generateContent{{
			Parts: []generatePart{
				{Text: scanPrompt},
				{InlineData: &inlineData{
					MimeType: "image/jpeg",
					Data:     base64.StdEncoding.EncodeToString(encoded),
				}},
			},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return domain.UnusableResult(), fmt.Errorf("failed to encode request: %w", err)
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return domain.UnusableResult(), fmt.Errorf("rate limiter error: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	params := url.Values{}
	params.Add("key", apiKey)
	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "POST", reqURL, bytes.NewReader(body))
	if err != nil {
		return domain.UnusableResult(), fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Gemini] Request error: %v", err)
		return domain.UnusableResult(), fmt.Errorf("%w: %v", domain.ErrAnalysisFailed, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[Gemini] API error - Status: %d, Body: %s", resp.StatusCode, truncate(respBody, 512))
		return domain.UnusableResult(), fmt.Errorf("%w: status %d", domain.ErrAnalysisFailed, resp.StatusCode)
	}

	var envelope generateResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		log.Printf("[Gemini] Envelope decode error: %v", err)
		return domain.UnusableResult(), fmt.Errorf("%w: failed to decode response: %v", domain.ErrAnalysisFailed, err)
	}

	text := firstCandidateText(&envelope)
	if c.debug {
		log.Printf("[Gemini] Model reply: %q", text)
	}

	return parseScanReply(text), nil
}

// firstCandidateText pulls the model's free-text reply out of the response
// envelope. Missing candidates or parts yield an empty string, which the
// reply parser maps to an unusable result.
func firstCandidateText(envelope *generateResponse) string {
	if len(envelope.Candidates) == 0 {
		return ""
	}
	parts := envelope.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return ""
	}
	return parts[0].Text
}

// parseScanReply decodes the model's reply text against the constrained
// schema. Every failure mode maps to the unusable outcome, never an error.
func parseScanReply(text string) domain.AnalysisResult {
	var reply scanReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &reply); err != nil {
		return domain.UnusableResult()
	}

	if reply.Error == scanErrorToken {
		return domain.UnusableResult()
	}
	if reply.Calories == nil {
		return domain.UnusableResult()
	}

	return domain.UsableResult(*reply.Calories, strings.TrimSpace(reply.Label))
}

// ValidateKey checks a candidate API key against the models-listing
// endpoint. Any 2xx response whose body carries a "models" field counts as
// valid; everything else, including transport errors, is invalid. Used only
// at credential-save time, never as part of a scan.
func (c *Client) ValidateKey(ctx context.Context, apiKey string) bool {
	if strings.TrimSpace(apiKey) == "" {
		return false
	}

	params := url.Values{}
	params.Add("key", apiKey)
	reqURL := fmt.Sprintf("%s/v1beta/models?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return false
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("[Gemini] Key validation request error: %v", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("[Gemini] Key validation rejected - Status: %d", resp.StatusCode)
		return false
	}

	var listing struct {
		Models []json.RawMessage `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return false
	}
	return listing.Models != nil
}

// encodeJPEG decodes any supported image format and re-encodes it as JPEG
// at the fixed quality factor.
func encodeJPEG(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

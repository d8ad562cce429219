package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/healthpal/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testImage returns a small valid JPEG for analyze tests.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

// replyServer returns an httptest server that answers generateContent with
// the given model reply text wrapped in the documented envelope.
func replyServer(t *testing.T, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": replyText},
					},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope)
	}))
}

func TestNewClient(t *testing.T) {
	client := NewClient("https://api.example.com", "gemini-1.5-pro-latest")

	assert.NotNil(t, client)
	assert.Equal(t, "https://api.example.com", client.baseURL)
	assert.Equal(t, "gemini-1.5-pro-latest", client.model)
	assert.NotNil(t, client.httpClient)
	assert.NotNil(t, client.rateLimiter)
	assert.False(t, client.debug)
}

func TestParseScanReply(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantUsable   bool
		wantCalories int
		wantLabel    string
	}{
		{
			name:         "well-formed success reply",
			text:         `{"calories": 320, "label": "grilled chicken"}`,
			wantUsable:   true,
			wantCalories: 320,
			wantLabel:    "grilled chicken",
		},
		{
			name:       "explicit scanning error",
			text:       `{"error":"ErrorInScanning"}`,
			wantUsable: false,
		},
		{
			name:       "missing calories field",
			text:       `{"label": "mystery dish"}`,
			wantUsable: false,
		},
		{
			name:       "non-JSON reply",
			text:       "Sorry, I cannot identify this image.",
			wantUsable: false,
		},
		{
			name:       "empty reply",
			text:       "",
			wantUsable: false,
		},
		{
			name:         "negative calories clamped to zero",
			text:         `{"calories": -40, "label": "water"}`,
			wantUsable:   true,
			wantCalories: 0,
			wantLabel:    "water",
		},
		{
			name:         "blank label gets default",
			text:         `{"calories": 120, "label": "  "}`,
			wantUsable:   true,
			wantCalories: 120,
			wantLabel:    domain.DefaultScanLabel,
		},
		{
			name:         "zero calories is a valid estimate",
			text:         `{"calories": 0, "label": "black coffee"}`,
			wantUsable:   true,
			wantCalories: 0,
			wantLabel:    "black coffee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseScanReply(tt.text)

			assert.Equal(t, tt.wantUsable, result.Usable)
			if tt.wantUsable {
				assert.Equal(t, tt.wantCalories, result.Calories)
				assert.Equal(t, tt.wantLabel, result.Label)
			}
		})
	}
}

func TestAnalyze_Success(t *testing.T) {
	var gotRequest generateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "/v1beta/models/gemini-1.5-pro-latest:generateContent", r.URL.Path)
		assert.Equal(t, "test-api-key", r.URL.Query().Get("key"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotRequest))

		envelope := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{
						{"text": `{"calories": 540, "label": "cheeseburger"}`},
					},
				}},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(envelope)
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-1.5-pro-latest")

	result, err := client.Analyze(context.Background(), testImage(t), "test-api-key")

	require.NoError(t, err)
	assert.True(t, result.Usable)
	assert.Equal(t, 540, result.Calories)
	assert.Equal(t, "cheeseburger", result.Label)

	// The request carries exactly one content with prompt text + inline image.
	require.Len(t, gotRequest.Contents, 1)
	require.Len(t, gotRequest.Contents[0].Parts, 2)
	assert.Contains(t, gotRequest.Contents[0].Parts[0].Text, "single JSON object")
	require.NotNil(t, gotRequest.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/jpeg", gotRequest.Contents[0].Parts[1].InlineData.MimeType)
	assert.NotEmpty(t, gotRequest.Contents[0].Parts[1].InlineData.Data)
}

func TestAnalyze_UnusableReply(t *testing.T) {
	server := replyServer(t, `{"error":"ErrorInScanning"}`)
	defer server.Close()

	client := NewClient(server.URL, "gemini-1.5-pro-latest")

	result, err := client.Analyze(context.Background(), testImage(t), "test-api-key")

	require.NoError(t, err)
	assert.False(t, result.Usable)
}

func TestAnalyze_MalformedReplyText(t *testing.T) {
	server := replyServer(t, "I think that might be a sandwich?")
	defer server.Close()

	client := NewClient(server.URL, "gemini-1.5-pro-latest")

	result, err := client.Analyze(context.Background(), testImage(t), "test-api-key")

	require.NoError(t, err)
	assert.False(t, result.Usable)
}

func TestAnalyze_ServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-1.5-pro-latest")

	_, err := client.Analyze(context.Background(), testImage(t), "test-api-key")

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.Equal(t, 1, attempts) // single attempt per scan, no retry
}

func TestAnalyze_EmptyKey_NoNetworkCall(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-1.5-pro-latest")

	_, err := client.Analyze(context.Background(), testImage(t), "   ")

	assert.ErrorIs(t, err, domain.ErrNoCredentialConfigured)
	assert.Equal(t, 0, attempts)
}

func TestAnalyze_InvalidImage(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-1.5-pro-latest")

	_, err := client.Analyze(context.Background(), []byte("not an image"), "test-api-key")

	assert.ErrorIs(t, err, domain.ErrAnalysisFailed)
	assert.Equal(t, 0, attempts)
}

func TestValidateKey_Valid(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1beta/models", r.URL.Path)
		assert.Equal(t, "candidate-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"models":[{"name":"models/gemini-1.5-pro-latest"}]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "gemini-1.5-pro-latest")

	assert.True(t, client.ValidateKey(context.Background(), "candidate-key"))
}

func TestValidateKey_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "unauthorized status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
			},
		},
		{
			name: "body without models field",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"error":"unknown"}`))
			},
		},
		{
			name: "non-JSON body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>nope</html>"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			client := NewClient(server.URL, "gemini-1.5-pro-latest")
			assert.False(t, client.ValidateKey(context.Background(), "candidate-key"))
		})
	}
}

func TestValidateKey_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // closed before use

	client := NewClient(server.URL, "gemini-1.5-pro-latest")

	assert.False(t, client.ValidateKey(context.Background(), "candidate-key"))
}

func TestValidateKey_EmptyKey(t *testing.T) {
	client := NewClient("https://api.example.com", "gemini-1.5-pro-latest")

	assert.False(t, client.ValidateKey(context.Background(), "  "))
}

func TestEncodeJPEG_RoundTrip(t *testing.T) {
	encoded, err := encodeJPEG(testImage(t))

	require.NoError(t, err)
	_, format, err := image.Decode(bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
}

package mediapipe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	cfg.RetryBaseDelay = time.Millisecond
	return cfg
}

func TestClient_FaceMesh(t *testing.T) {
	tests := []struct {
		name           string
		serverResponse interface{}
		serverStatus   int
		wantErr        error
		validateResp   func(*testing.T, *FaceMeshResponse)
	}{
		{
			name: "successful response with one face",
			serverResponse: FaceMeshResponse{
				Width:  640,
				Height: 480,
				Faces: []FaceMeshFace{
					{Landmarks: make([]Landmark, 478), Score: 0.97},
				},
			},
			serverStatus: http.StatusOK,
			validateResp: func(t *testing.T, resp *FaceMeshResponse) {
				require.NotNil(t, resp)
				require.Len(t, resp.Faces, 1)
				assert.Len(t, resp.Faces[0].Landmarks, 478)
				assert.Equal(t, 640, resp.Width)
			},
		},
		{
			name:           "no faces",
			serverResponse: FaceMeshResponse{Faces: []FaceMeshFace{}},
			serverStatus:   http.StatusOK,
			validateResp: func(t *testing.T, resp *FaceMeshResponse) {
				require.NotNil(t, resp)
				assert.Empty(t, resp.Faces)
			},
		},
		{
			name:           "client error is not retried",
			serverResponse: map[string]string{"error": "bad image"},
			serverStatus:   http.StatusBadRequest,
			wantErr:        ErrClientRequest,
		},
		{
			name:           "server error exhausts retries",
			serverResponse: map[string]string{"error": "model crashed"},
			serverStatus:   http.StatusInternalServerError,
			wantErr:        ErrMediaPipeUnavailable,
		},
		{
			name:           "malformed body",
			serverResponse: "not-an-object",
			serverStatus:   http.StatusOK,
			wantErr:        ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/face_mesh", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var req FaceMeshRequest
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, "aW1n", req.Img)
				assert.Equal(t, 1, req.MaxNumFaces)
				assert.True(t, req.RefineLandmarks)
				assert.Equal(t, 0.6, req.MinDetectionConfidence)

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.serverStatus)
				_ = json.NewEncoder(w).Encode(tt.serverResponse)
			}))
			defer server.Close()

			client := NewClient(testConfig(server.URL))
			resp, err := client.FaceMesh(context.Background(), "aW1n")

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			if tt.validateResp != nil {
				tt.validateResp(t, resp)
			}
		})
	}
}

func TestClient_Retry(t *testing.T) {
	t.Run("retries server errors then succeeds", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&calls, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_ = json.NewEncoder(w).Encode(FaceMeshResponse{Faces: []FaceMeshFace{{Score: 1}}})
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL))
		resp, err := client.FaceMesh(context.Background(), "aW1n")

		require.NoError(t, err)
		assert.Len(t, resp.Faces, 1)
		assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnprocessableEntity)
		}))
		defer server.Close()

		client := NewClient(testConfig(server.URL))
		_, err := client.FaceMesh(context.Background(), "aW1n")

		assert.ErrorIs(t, err, ErrClientRequest)
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		cfg := testConfig(server.URL)
		cfg.RetryBaseDelay = time.Minute
		client := NewClient(cfg)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := client.FaceMesh(ctx, "aW1n")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestCalculateBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{5, 16 * time.Second},
		{10, maxBackoff},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, calculateBackoff(time.Second, tt.attempt), "attempt %d", tt.attempt)
	}

	assert.Equal(t, time.Second, calculateBackoff(0, 1))
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	assert.NoError(t, NewClient(testConfig(server.URL)).Ping(context.Background()))
}

package ocr

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"menu-recommender/internal/infrastructure/config"
	"menu-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	return NewClient(&config.OCRConfig{
		APIKey:   "ocr-key",
		BaseURL:  url,
		Language: "eng",
		Engine:   2,
		Timeout:  5 * time.Second,
	})
}

func TestClient_ExtractText(t *testing.T) {
	img := []byte{0xff, 0xd8, 0xff, 0xe0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/parse/image", r.URL.Path)
		assert.Equal(t, "ocr-key", r.Header.Get("apikey"))
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "data:image/jpeg;base64,"+base64.StdEncoding.EncodeToString(img), r.PostForm.Get("base64Image"))
		assert.Equal(t, "eng", r.PostForm.Get("language"))
		assert.Equal(t, "2", r.PostForm.Get("OCREngine"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ParsedResults":[{"ParsedText":"Grilled Salmon  $18\r\n"},{"ParsedText":"Caesar Salad $12"}],"OCRExitCode":1,"IsErroredOnProcessing":false}`))
	}))
	defer srv.Close()

	text, err := newTestClient(srv.URL).ExtractText(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, "Grilled Salmon  $18\nCaesar Salad $12", text)
}

func TestClient_ExtractTextProcessingError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"OCRExitCode":3,"IsErroredOnProcessing":true,"ErrorMessage":["Unable to recognize the file type"]}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ExtractText(context.Background(), []byte{1})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOCRServiceError)
	assert.Contains(t, err.Error(), "Unable to recognize the file type")
}

func TestClient_ExtractTextHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(strings.Repeat("denied ", 100)))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).ExtractText(context.Background(), []byte{1})
	assert.ErrorIs(t, err, common.ErrOCRServiceError)
	assert.Contains(t, err.Error(), "status 403")
}

func TestClient_ExtractTextEmptyImage(t *testing.T) {
	_, err := newTestClient("http://127.0.0.1:1").ExtractText(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrInvalidImageFormat)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "a; b", errorMessage([]byte(`["a","b"]`)))
	assert.Equal(t, "single", errorMessage([]byte(`"single"`)))
	assert.Equal(t, "unknown error", errorMessage(nil))
}

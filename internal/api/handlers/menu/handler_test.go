package menu

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	menuService "menu-recommender/internal/core/menu"
	"menu-recommender/internal/core/recommend"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeImages struct{}

func (fakeImages) Decode(_ context.Context, input string) ([]byte, error) {
	return []byte(input), nil
}

type fakeOCR struct{ text string }

func (f fakeOCR) ExtractText(context.Context, []byte) (string, error) {
	return f.text, nil
}

type fakeDishes struct{ dishes []map[string]any }

func (f fakeDishes) GenerateDishes(context.Context, string) ([]map[string]any, error) {
	return f.dishes, nil
}

var menuDishes = []map[string]any{
	{"name": "Grilled Salmon", "description": "with steamed rice and greens", "price": "$18"},
	{"name": "Peanut Noodles", "ingredients": "noodles, peanut sauce, scallion"},
	{"name": "Garden Salad", "description": "fresh vegetables, olive oil"},
}

func newRouter(ocrText string) *gin.Engine {
	scans := menuService.NewScanService(fakeImages{}, fakeOCR{text: ocrText}, fakeDishes{dishes: menuDishes}, nil)
	h := NewHandler(scans)

	r := gin.New()
	r.POST("/menu/scan", h.HandleScan)
	r.POST("/menu/extract", h.HandleExtract)
	r.POST("/recommendations", h.HandleRecommend)
	r.POST("/recommendations/prefilter", h.HandlePreFilter)
	r.GET("/catalog", h.HandleCatalog)
	return r
}

func perform(t *testing.T, r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHandleScan(t *testing.T) {
	r := newRouter("GRILLED SALMON 18\nPEANUT NOODLES 12\nGARDEN SALAD 9")

	w := perform(t, r, http.MethodPost, "/menu/scan",
		`{"image":"aGVsbG8=","profile":{"allergies":["peanut"]},"context":{"hunger":"light"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result menuService.ScanResult
	decode(t, w, &result)
	assert.NotEmpty(t, result.ScanID)
	assert.Len(t, result.Dishes, 3)
	assert.Equal(t, recommend.ModeWeighted, result.Recommendation.Mode)
	require.Len(t, result.Recommendation.Rejected, 1)
	assert.Equal(t, "Peanut Noodles", result.Recommendation.Rejected[0].Dish.Name)
	for _, d := range result.Recommendation.Top3 {
		assert.NotEqual(t, "Peanut Noodles", d.Name)
	}
}

func TestHandleScan_Validation(t *testing.T) {
	r := newRouter("menu")

	tests := []struct {
		name string
		body string
	}{
		{"missing image", `{"profile":{}}`},
		{"bad hunger", `{"image":"aGVsbG8=","context":{"hunger":"starving"}}`},
		{"bad timing", `{"image":"aGVsbG8=","context":{"timing":"midnight"}}`},
		{"bad mode", `{"image":"aGVsbG8=","mode":"random"}`},
		{"malformed", `{"image":`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := perform(t, r, http.MethodPost, "/menu/scan", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Contains(t, w.Body.String(), "INVALID_REQUEST")
		})
	}
}

func TestHandleScan_NoMenuText(t *testing.T) {
	r := newRouter("   ")
	w := perform(t, r, http.MethodPost, "/menu/scan", `{"image":"aGVsbG8="}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_MENU_TEXT")
}

func TestHandleExtract(t *testing.T) {
	r := newRouter("")
	w := perform(t, r, http.MethodPost, "/menu/extract", `{"text":"Grilled Salmon\nGarden Salad","mode":"category"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result menuService.ScanResult
	decode(t, w, &result)
	assert.Equal(t, recommend.ModeCategory, result.Recommendation.Mode)
	assert.Len(t, result.Recommendation.Top3, 3)
}

func TestHandleRecommend_Catalog(t *testing.T) {
	r := newRouter("")
	w := perform(t, r, http.MethodPost, "/recommendations",
		`{"use_catalog":true,"profile":{"dietary_preferences":["vegan"]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec recommend.Recommendation
	decode(t, w, &rec)
	assert.False(t, rec.NoSafeDishes)
	assert.Len(t, rec.All, 3)
	assert.ElementsMatch(t,
		[]string{"Tofu Buddha Bowl", "Lentil Soup", "Steamed Vegetable Dumplings"},
		[]string{rec.All[0].Name, rec.All[1].Name, rec.All[2].Name})
	for _, d := range rec.Top3 {
		assert.GreaterOrEqual(t, d.Score, 1.0)
		assert.LessOrEqual(t, d.Score, 10.0)
	}
}

func TestHandleRecommend_NoSafeDishes(t *testing.T) {
	r := newRouter("")
	w := perform(t, r, http.MethodPost, "/recommendations",
		`{"dishes":[{"name":"Peanut Noodles","ingredients":["peanut"]}],"profile":{"allergies":["peanut"]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rec recommend.Recommendation
	decode(t, w, &rec)
	assert.True(t, rec.NoSafeDishes)
	assert.Empty(t, rec.Top3)
	assert.Equal(t, recommend.NoSafeDishesMessage, rec.Message)
}

func TestHandleRecommend_Errors(t *testing.T) {
	r := newRouter("")

	w := perform(t, r, http.MethodPost, "/recommendations", `{"profile":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = perform(t, r, http.MethodPost, "/recommendations", `{"dishes":[{"price":3}]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "NO_DISHES_FOUND")
}

func TestHandlePreFilter(t *testing.T) {
	r := newRouter("")
	w := perform(t, r, http.MethodPost, "/recommendations/prefilter",
		`{"dishes":[{"name":"Pork Belly Bao"},{"name":"Garden Salad"}],"profile":{"dietary_laws":"halal"}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result recommend.FilterResult
	decode(t, w, &result)
	require.Len(t, result.Safe, 1)
	assert.Equal(t, "Garden Salad", result.Safe[0].Name)
	require.Len(t, result.Rejected, 1)
	assert.NotEmpty(t, result.Rejected[0].Reason)

	w = perform(t, r, http.MethodPost, "/recommendations/prefilter", `{"profile":{}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCatalog(t *testing.T) {
	r := newRouter("")
	w := perform(t, r, http.MethodGet, "/catalog", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp CatalogResponse
	decode(t, w, &resp)
	assert.Equal(t, 12, resp.Count)
	assert.Equal(t, "Grilled Chicken Salad", resp.Dishes[0].Name)
}

package menu

import (
	"context"
	"testing"

	"menu-recommender/internal/core/recommend"
	"menu-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeImages struct{ err error }

func (f fakeImages) Decode(ctx context.Context, input string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(input), nil
}

type fakeOCR struct {
	text string
	got  []byte
}

func (f *fakeOCR) ExtractText(ctx context.Context, image []byte) (string, error) {
	f.got = image
	return f.text, nil
}

type fakeDishes struct {
	raws []map[string]any
	text string
}

func (f *fakeDishes) GenerateDishes(ctx context.Context, menuText string) ([]map[string]any, error) {
	f.text = menuText
	return f.raws, nil
}

func sampleRaws() []map[string]any {
	return []map[string]any{
		{"name": "Peanut Noodles", "description": "rice noodles in peanut sauce", "price": "$13"},
		{"name": "Grilled Chicken Salad", "price": 14},
		{"Dish Name": "Pork Ribs", "cost": "22.00"},
		{"description": "no name, skipped"},
	}
}

func TestScanService_Scan(t *testing.T) {
	ocr := &fakeOCR{text: "  PEANUT NOODLES 13\nGRILLED CHICKEN SALAD 14  "}
	gen := &fakeDishes{raws: sampleRaws()}
	svc := NewScanService(fakeImages{}, ocr, gen, nil)

	res, err := svc.Scan(context.Background(), ScanRequest{
		Image: "img",
		Preferences: Preferences{
			Profile: recommend.UserProfile{Allergies: []string{"nuts"}, DietaryLaws: recommend.DietaryLawHalal},
			Context: recommend.Context{Hunger: recommend.HungerLight},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []byte("img"), ocr.got)
	assert.Equal(t, "PEANUT NOODLES 13\nGRILLED CHICKEN SALAD 14", gen.text)
	assert.NotEmpty(t, res.ScanID)
	assert.Len(t, res.Dishes, 3)
	assert.Equal(t, recommend.ModeWeighted, res.Recommendation.Mode)
	require.Len(t, res.Recommendation.Top3, 1)
	assert.Equal(t, "Grilled Chicken Salad", res.Recommendation.Top3[0].Name)
	assert.Len(t, res.Recommendation.Rejected, 2)
	assert.Equal(t, recommend.EstimationDisclaimer, res.Disclaimer)
}

func TestScanService_ScanErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewScanService(nil, nil, nil, nil).Scan(ctx, ScanRequest{Image: "x"})
	assert.ErrorIs(t, err, common.ErrOCRServiceDisabled)

	_, err = NewScanService(fakeImages{err: common.ErrInvalidImageFormat}, &fakeOCR{}, &fakeDishes{}, nil).Scan(ctx, ScanRequest{Image: "x"})
	assert.ErrorIs(t, err, common.ErrInvalidImageFormat)

	_, err = NewScanService(fakeImages{}, &fakeOCR{text: "  "}, &fakeDishes{}, nil).Scan(ctx, ScanRequest{Image: "x"})
	assert.ErrorIs(t, err, common.ErrNoMenuText)

	_, err = NewScanService(fakeImages{}, &fakeOCR{text: "menu"}, &fakeDishes{raws: []map[string]any{{"price": 3}}}, nil).Scan(ctx, ScanRequest{Image: "x"})
	assert.ErrorIs(t, err, common.ErrNoDishesFound)

	_, err = NewScanService(fakeImages{}, &fakeOCR{text: "menu"}, &fakeDishes{}, nil).Scan(ctx, ScanRequest{
		Image:       "x",
		Preferences: Preferences{Context: recommend.Context{Hunger: "starving"}},
	})
	assert.True(t, common.IsValidationError(err))
}

func TestScanService_RecommendTextCategoryMode(t *testing.T) {
	svc := NewScanService(nil, nil, &fakeDishes{raws: sampleRaws()}, nil)
	res, err := svc.RecommendText(context.Background(), TextRequest{
		Text:        "menu",
		Preferences: Preferences{Mode: recommend.ModeCategory},
	})
	require.NoError(t, err)
	assert.Equal(t, recommend.ModeCategory, res.Recommendation.Mode)
	assert.Len(t, res.Recommendation.Top3, 3)
	assert.Empty(t, res.Recommendation.Rejected)
}

func TestScanService_RecommendTextDisabled(t *testing.T) {
	_, err := NewScanService(nil, nil, nil, nil).RecommendText(context.Background(), TextRequest{Text: "menu"})
	assert.ErrorIs(t, err, common.ErrAIServiceDisabled)
}

func TestScanService_RecommendInvalidMode(t *testing.T) {
	_, err := NewScanService(nil, nil, nil, nil).Recommend(nil, Preferences{Mode: "random"})
	assert.True(t, common.IsValidationError(err))
}

func TestScanService_RecommendNoSafeDishes(t *testing.T) {
	dishes := recommend.NormalizeDishes(sampleRaws()[:1])
	rec, err := NewScanService(nil, nil, nil, nil).Recommend(dishes, Preferences{
		Profile: recommend.UserProfile{Allergies: []string{"peanuts"}},
	})
	require.NoError(t, err)
	assert.True(t, rec.NoSafeDishes)
	assert.Empty(t, rec.Top3)
}

package menu

import (
	"context"
	"errors"
	"testing"

	"menu-recommender/internal/core/ai/service"
	"menu-recommender/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCompleter struct {
	content string
	err     error
	prompt  string
	kind    string
}

func (f *fakeCompleter) Complete(ctx context.Context, kind, system, prompt string) (*service.Response, error) {
	f.kind = kind
	f.prompt = prompt
	if f.err != nil {
		return nil, f.err
	}
	return &service.Response{Content: f.content}, nil
}

func TestParseDishes_Shapes(t *testing.T) {
	cases := map[string]string{
		"wrapped":  `{"dishes":[{"name":"Pho"},{"name":"Banh Mi"}]}`,
		"items":    `{"items":[{"name":"Pho"},{"name":"Banh Mi"}]}`,
		"array":    `[{"name":"Pho"},{"name":"Banh Mi"}]`,
		"fenced":   "Here you go:\n```json\n[{\"name\":\"Pho\"},{\"name\":\"Banh Mi\"}]\n```",
		"repaired": `{dishes: [{name: "Pho",}, {name: "Banh Mi"},],}`,
		"strings":  `["Pho", "Banh Mi", ""]`,
	}
	for label, content := range cases {
		dishes, err := ParseDishes(content)
		require.NoError(t, err, label)
		require.Len(t, dishes, 2, label)
		assert.Equal(t, "Pho", dishes[0]["name"], label)
		assert.Equal(t, "Banh Mi", dishes[1]["name"], label)
	}
}

func TestParseDishes_SingleObject(t *testing.T) {
	dishes, err := ParseDishes(`{"name":"Pho","price":12}`)
	require.NoError(t, err)
	require.Len(t, dishes, 1)
}

func TestParseDishes_Errors(t *testing.T) {
	_, err := ParseDishes("I could not read this menu.")
	assert.ErrorIs(t, err, common.ErrLLMResponseInvalid)

	_, err = ParseDishes(`{"restaurant":"Cafe"}`)
	assert.ErrorIs(t, err, common.ErrLLMResponseInvalid)

	_, err = ParseDishes(`{"dishes":[]}`)
	assert.ErrorIs(t, err, common.ErrNoDishesFound)
}

func TestExtractor_GenerateDishes(t *testing.T) {
	fc := &fakeCompleter{content: `{"dishes":[{"name":"Pho","price":"$12"}]}`}
	dishes, err := NewExtractor(fc).GenerateDishes(context.Background(), "  PHO .... $12  ")
	require.NoError(t, err)
	require.Len(t, dishes, 1)
	assert.Equal(t, "dishes", fc.kind)
	assert.Equal(t, "Menu text:\nPHO .... $12", fc.prompt)

	_, err = NewExtractor(fc).GenerateDishes(context.Background(), "   ")
	assert.ErrorIs(t, err, common.ErrNoMenuText)

	upstream := errors.New("boom")
	_, err = NewExtractor(&fakeCompleter{err: upstream}).GenerateDishes(context.Background(), "menu")
	assert.ErrorIs(t, err, upstream)
}

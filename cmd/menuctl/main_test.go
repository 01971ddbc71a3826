package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"menu-recommender/internal/core/recommend"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestCatalogCmd(t *testing.T) {
	out, err := run(t, "catalog")
	require.NoError(t, err)

	var dishes []recommend.Dish
	require.NoError(t, json.Unmarshal([]byte(out), &dishes))
	assert.Len(t, dishes, 12)
}

func TestRankCmd_Catalog(t *testing.T) {
	profile := writeFile(t, "profile.json", `{"dietary_preferences":["vegan"]}`)

	out, err := run(t, "rank", "--catalog", "--profile", profile, "--hunger", "light")
	require.NoError(t, err)

	var rec recommend.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, recommend.ModeWeighted, rec.Mode)
	assert.Len(t, rec.Top3, 3)
	assert.Len(t, rec.Rejected, 9)
}

func TestRankCmd_DishFile(t *testing.T) {
	dishes := writeFile(t, "dishes.json", `{"dishes":[
		{"name":"Grilled Salmon","description":"with greens"},
		{"name":"Cheese Pizza"},
		{"name":"Chocolate Cake","description":"rich and creamy"}
	]}`)

	out, err := run(t, "rank", "--dishes", dishes, "--mode", "category")
	require.NoError(t, err)

	var rec recommend.Recommendation
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, recommend.ModeCategory, rec.Mode)
	assert.Len(t, rec.Top3, 3)
}

func TestRankCmd_Errors(t *testing.T) {
	_, err := run(t, "rank")
	assert.Error(t, err)

	_, err = run(t, "rank", "--catalog", "--dishes", "x.json")
	assert.Error(t, err)

	_, err = run(t, "rank", "--catalog", "--mode", "random")
	assert.Error(t, err)

	_, err = run(t, "rank", "--catalog", "--hunger", "starving")
	assert.Error(t, err)
}

func TestPreFilterCmd(t *testing.T) {
	dishes := writeFile(t, "dishes.json", `[{"name":"Pad Thai","ingredients":["peanuts","shrimp"]},{"name":"Garden Salad"}]`)
	profile := writeFile(t, "profile.json", `{"allergies":["peanut"]}`)

	out, err := run(t, "prefilter", "--dishes", dishes, "--profile", profile)
	require.NoError(t, err)

	var result recommend.FilterResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Safe, 1)
	assert.Equal(t, "Garden Salad", result.Safe[0].Name)
	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "Pad Thai", result.Rejected[0].Dish.Name)
}

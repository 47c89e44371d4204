package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/fine-structures/ecomotif/config"
	"github.com/fine-structures/ecomotif/libmotif/catalog"
	"github.com/fine-structures/ecomotif/motifs"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const everglades = `% everglades sample
A B 1.0
B C 2.0
A C 3.0
C D 1.5
`

func loadTestConfig(t *testing.T, settings map[string]any) *config.Config {
	t.Helper()

	v := viper.New()
	for key, val := range settings {
		v.Set(key, val)
	}
	cfg, err := config.LoadFrom(v)
	require.NoError(t, err)
	return cfg
}

func writeEdgeList(t *testing.T, name, text string) string {
	t.Helper()

	pathname := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(pathname, []byte(text), 0600))
	return pathname
}

func TestFind(t *testing.T) {
	cfg := loadTestConfig(t, map[string]any{
		"edge_list":        writeEdgeList(t, "eco-everglades.edges", everglades),
		"comment_prefixes": []string{"%"},
		"workers":          3,
	})

	var out bytes.Buffer
	require.NoError(t, findMotifs(cfg, &out))
	assert.Equal(t, "Motif 1,A-B-C\nMotif 2,B-A-C\nMotif 3,C-B-A\n", out.String())
}

func TestFindToCatalog(t *testing.T) {
	tests := []struct {
		name    string
		unique  bool
		listing string
	}{
		{"unique", true, "Motif 1,A-B-C\n"},
		{"every pivot", false, "Motif 1,A-B-C\nMotif 2,B-A-C\nMotif 3,C-B-A\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			edgeList := writeEdgeList(t, "eco-everglades.edges", everglades)
			cfg := loadTestConfig(t, map[string]any{
				"edge_list":        edgeList,
				"comment_prefixes": []string{"%"},
				"unique":           tt.unique,
				"output":           filepath.Join(dir, "motifs.txt"),
				"catalog.path":     filepath.Join(dir, "motifs.db"),
			})

			require.NoError(t, findMotifs(cfg, nil))

			listing, err := os.ReadFile(cfg.Output)
			require.NoError(t, err)
			assert.Equal(t, tt.listing, string(listing))

			ctx := motifs.NewCatalogContext()
			defer func() {
				ctx.Close()
				<-ctx.Done()
			}()

			cat, err := catalog.OpenCatalog(ctx, motifs.CatalogOpts{
				DbPathName: cfg.Catalog.Path,
				ReadOnly:   true,
			})
			require.NoError(t, err)
			defer cat.Close()

			// The catalog holds each triangle once however the listing reports it
			assert.Equal(t, int64(1), cat.NumMotifs())
			assert.Equal(t, []motifs.Motif{{"A", "B", "C"}}, motifs.SelectFromCatalog(cat).Collect())

			TX, err := cat.GetTraces("eco-everglades")
			require.NoError(t, err)
			assert.Equal(t, int64(1), TX.NumTriangles())
		})
	}
}

func TestFindWeights(t *testing.T) {
	cfg := loadTestConfig(t, map[string]any{
		"edge_list":        writeEdgeList(t, "eco-everglades.edges", everglades),
		"comment_prefixes": []string{"%"},
		"unique":           true,
		"weights":          true,
	})

	var out bytes.Buffer
	require.NoError(t, findMotifs(cfg, &out))
	assert.Equal(t, "Motif 1,A-B-C,1,3,2\n", out.String())
}

func TestFindParseError(t *testing.T) {
	dir := t.TempDir()
	cfg := loadTestConfig(t, map[string]any{
		"edge_list": writeEdgeList(t, "bad.edges", "A B 1.0\nB C heavy\n"),
		"output":    filepath.Join(dir, "motifs.txt"),
	})

	var out bytes.Buffer
	err := findMotifs(cfg, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, motifs.ErrParse))
	assert.True(t, errors.Is(err, motifs.ErrBadWeight))

	var parseErr *motifs.ParseError
	require.True(t, errors.As(err, &parseErr))
	assert.Equal(t, 2, parseErr.Line)

	// Nothing is written when the input is rejected
	assert.Zero(t, out.Len())
	_, err = os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(err))
}

func TestFindMissingFile(t *testing.T) {
	cfg := loadTestConfig(t, map[string]any{
		"edge_list": filepath.Join(t.TempDir(), "nope.edges"),
	})

	err := findMotifs(cfg, &bytes.Buffer{})
	require.Error(t, err)
	assert.False(t, errors.Is(err, motifs.ErrParse))
}

func TestNetworkName(t *testing.T) {
	assert.Equal(t, "eco-everglades", networkName("data/eco-everglades.edges"))
	assert.Equal(t, "florida", networkName("florida"))
}

func TestRunScript(t *testing.T) {
	edgeList := writeEdgeList(t, "eco.edges", "A B 1\nB C 1\nA C 1\n")
	script := writeEdgeList(t, "count.py", `
import _pymotif

X = _pymotif.LoadEdgeList("`+edgeList+`")
assert X.TriangleCount() == 1
assert X.Stream().Print("").Go() == 3
`)

	require.True(t, filepath.IsAbs(script))
	require.NoError(t, goGpython(script))
	assert.Error(t, goGpython(filepath.Join(t.TempDir(), "missing.py")))
}

func TestRunScriptRelative(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.py"), []byte(`
import _pymotif
assert _pymotif.MOTIF_SIZE == 3
`), 0600))

	chdir(t, dir)
	require.NoError(t, goGpython("version.py"))
}

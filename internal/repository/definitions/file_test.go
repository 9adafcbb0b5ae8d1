package definitions

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/catalog"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/domain/tag"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/generator"
	"github.com/PChiesa/pi-system-monitoring-agent-sub001/internal/scenario"
)

// newTestRepository builds a repository over a temp directory.
func newTestRepository(t *testing.T) *FileRepository {
	t.Helper()

	dir := t.TempDir()

	return NewFileRepository(filepath.Join(dir, "tags.yaml"), filepath.Join(dir, "scenarios.yaml"))
}

// TestMissingFilesReturnNotFound asserts absent files map to ErrNotFound.
func TestMissingFilesReturnNotFound(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	_, err := repo.LoadTags(ctx)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = repo.LoadScenarios(ctx)
	require.ErrorIs(t, err, ErrNotFound)
}

// TestTagsRoundtrip persists the default catalogue and loads it back.
func TestTagsRoundtrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	defs := catalog.DefaultDefinitions()
	// Normalize the empty value type the way loading does.
	for _, d := range defs {
		require.NoError(t, d.Validate())
	}

	require.NoError(t, repo.SaveTags(ctx, defs))

	loaded, err := repo.LoadTags(ctx)
	require.NoError(t, err)
	require.Equal(t, defs, loaded)
}

// TestScenariosRoundtrip persists the built-in scenarios and loads them back.
func TestScenariosRoundtrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	defs := scenario.Builtins()
	require.NoError(t, repo.SaveScenarios(ctx, defs))

	loaded, err := repo.LoadScenarios(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, len(defs))
	require.Equal(t, defs[0].Name, loaded[0].Name)
	require.Equal(t, defs[0].Duration, loaded[0].Duration)
}

// TestLoadRejectsInvalidDefinitions checks the defensive re-validation path.
func TestLoadRejectsInvalidDefinitions(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	// A structurally broken tag (negative sigma) is persisted behind the
	// repository's back, as a corrupted or hand-edited file would be.
	require.NoError(t, repo.SaveTags(ctx, []*tag.Definition{
		{Name: "BROKEN", Profile: tag.Profile{Sigma: -1}},
	}))

	_, err := repo.LoadTags(ctx)
	require.ErrorIs(t, err, tag.ErrInvalidDefinition)

	// Same for a scenario with an unknown curve.
	raw := "scenarios:\n" +
		"  - name: bad\n" +
		"    duration_ms: 60000\n" +
		"    modifiers:\n" +
		"      - tag: X\n" +
		"        start_value: 1\n" +
		"        end_value: 2\n" +
		"        curve: spline\n"
	require.NoError(t, os.WriteFile(repo.scenariosPath, []byte(raw), 0o600))

	_, err = repo.LoadScenarios(ctx)
	require.ErrorIs(t, err, scenario.ErrInvalidDefinition)
}

// TestScenarioFileShape pins the on-disk YAML shape consumed by operators:
// plain millisecond durations and per-modifier tuples.
func TestScenarioFileShape(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	raw := "scenarios:\n" +
		"  - name: choke-drift\n" +
		"    description: slow choke pressure drift\n" +
		"    duration_ms: 120000\n" +
		"    modifiers:\n" +
		"      - tag: BOP.MANIFOLD.PRESS\n" +
		"        start_value: 1500\n" +
		"        end_value: 1300\n" +
		"        curve: linear\n" +
		"      - tag: BOP.POD.BLUE.STATUS\n" +
		"        start_value: Active\n" +
		"        end_value: Failed\n" +
		"        curve: step\n" +
		"        threshold: 0.83\n"
	require.NoError(t, os.WriteFile(repo.scenariosPath, []byte(raw), 0o600))

	loaded, err := repo.LoadScenarios(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, "choke-drift", loaded[0].Name)
	require.Equal(t, 2*time.Minute, loaded[0].Duration)
	require.Equal(t, generator.CurveLinear, loaded[0].Modifiers[0].CurveType)
	require.Equal(t, generator.CurveStep, loaded[0].Modifiers[1].CurveType)
	require.NotNil(t, loaded[0].Modifiers[1].Threshold)
	require.InEpsilon(t, 0.83, *loaded[0].Modifiers[1].Threshold, 1e-9)
}

// TestScenarioSaveEmitsMilliseconds checks that saved files carry integral
// millisecond durations, not Go duration strings.
func TestScenarioSaveEmitsMilliseconds(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveScenarios(ctx, scenario.Builtins()))

	contents, err := os.ReadFile(repo.scenariosPath)
	require.NoError(t, err)
	require.Contains(t, string(contents), "duration_ms: 480000")
	require.NotContains(t, string(contents), "8m0s")
}

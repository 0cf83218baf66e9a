package harness

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// Golden scenarios: every YAML file under testdata/scenarios runs
// against its golden snapshot. Add a scenario file and run with -update
// to grow the suite.
func TestScenarioGoldens(t *testing.T) {
	paths, err := filepath.Glob("testdata/scenarios/*.yaml")
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		path := path
		t.Run(filepath.Base(path), func(t *testing.T) {
			scenario, err := LoadScenario(path)
			require.NoError(t, err)
			require.NoError(t, RunWithGolden(t, scenario))
		})
	}
}

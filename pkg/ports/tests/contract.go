package tests

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mentor/pkg/domain"
	"github.com/aretw0/mentor/pkg/graph"
	"github.com/aretw0/mentor/pkg/ports"
)

// SectionLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.SectionLoader.
// path must hold a section equivalent to want; missing must not exist.
func SectionLoaderContractTest(t *testing.T, loader ports.SectionLoader, path, missing string, want domain.Section) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		got, err := loader.Load(ctx, path)
		require.NoError(t, err)
		require.NotNil(t, got)

		if want.ID != "" {
			assert.Equal(t, want.ID, got.ID)
		} else {
			assert.NotEmpty(t, got.ID, "loaders derive an ID when the source has none")
		}
		assert.Equal(t, want.Name, got.Name)
		require.Len(t, got.Cases, len(want.Cases))
		for i, c := range want.Cases {
			assert.Equal(t, c.ID, got.Cases[i].ID, "case order must follow the source")
			assert.Equal(t, c.Question, got.Cases[i].Question)
			assert.Equal(t, c.MentorAnswer, got.Cases[i].MentorAnswer)
			assert.Equal(t, c.Next, got.Cases[i].Next)
		}

		_, err = graph.Build(*got)
		assert.NoError(t, err, "loaded section must build into a graph")
	})

	t.Run("Load_Stable", func(t *testing.T) {
		a, err := loader.Load(ctx, path)
		require.NoError(t, err)
		b, err := loader.Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, a.ID, b.ID, "section ID must be stable across loads")
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, missing)
		assert.Error(t, err)
	})
}

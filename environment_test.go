package trailhead_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/trailhead"
)

func TestEnvironmentValid(t *testing.T) {
	for _, tc := range []struct {
		name string
		env  trailhead.Environment
		err  error
	}{
		{"zero-value", "", trailhead.ErrNotValid},
		{"lower-case", "development", trailhead.ErrNotValid},
		{"development", trailhead.Development, nil},
		{"production", trailhead.Production, nil},
		{"testing", trailhead.Testing, nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			require.ErrorIs(t, tc.env.Valid(), tc.err)
		})
	}
}

func TestEnvVarOrEnv(t *testing.T) {
	// Arrange
	key := "TRAILHEAD_TEST_ENVIRONMENT"

	// Act + Assert
	require.Equal(t, trailhead.Development, trailhead.EnvVarOrEnv(key, trailhead.Development))

	t.Setenv(key, "staging")
	require.Equal(t, trailhead.Staging, trailhead.EnvVarOrEnv(key, trailhead.Development))

	t.Setenv(key, "nowhere")
	require.Equal(t, trailhead.Development, trailhead.EnvVarOrEnv(key, trailhead.Development))
}

func TestEnvVarOrScalars(t *testing.T) {
	// Arrange
	key := "TRAILHEAD_TEST_SCALAR"

	// Act + Assert
	require.True(t, trailhead.EnvVarOrBool(key, true))
	require.Equal(t, 7, trailhead.EnvVarOrInt(key, 7))
	require.Equal(t, "def", trailhead.EnvVarOrString(key, "def"))
	require.Equal(t, time.Second, trailhead.EnvVarOrDuration(key, time.Second))

	t.Setenv(key, "FALSE")
	require.False(t, trailhead.EnvVarOrBool(key, true))
	require.Equal(t, 7, trailhead.EnvVarOrInt(key, 7))
	require.Equal(t, "FALSE", trailhead.EnvVarOrString(key, "def"))

	t.Setenv(key, "42")
	require.Equal(t, 42, trailhead.EnvVarOrInt(key, 7))

	t.Setenv(key, "3m")
	require.Equal(t, 3*time.Minute, trailhead.EnvVarOrDuration(key, time.Second))
}

func TestEnvVarOrURL(t *testing.T) {
	// Arrange
	key := "TRAILHEAD_TEST_URL"

	// Act
	u := trailhead.EnvVarOrURL(key, "http://localhost:3000/ignored")

	// Assert
	require.Equal(t, "http://localhost:3000/", u.String())

	// Arrange
	t.Setenv(key, "https://example.com/faces")

	// Act
	u = trailhead.EnvVarOrURL(key, "http://localhost:3000")

	// Assert
	require.Equal(t, "/faces", u.Path)

	// Arrange
	t.Setenv(key, "not a url")

	// Act
	u = trailhead.EnvVarOrURL(key, "http://localhost:3000")

	// Assert
	require.Equal(t, "http://localhost:3000/", u.String())
}

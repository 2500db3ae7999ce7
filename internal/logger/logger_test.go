package logger

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, mode := range []string{"debug", "release", "test"} {
		log, err := New(mode)
		require.NoError(t, err)
		require.NotNil(t, log)
	}
}

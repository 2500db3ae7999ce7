package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewUser_DefaultState(t *testing.T) {
	u := NewUser(1, 10)
	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, int64(1), u.ID)
	require.Equal(t, int64(10), u.ChatID)
	require.Empty(t, u.LastAnalysisID)
}

func TestUser_RecordAnalysis(t *testing.T) {
	u := NewUser(1, 10)
	u.SetState(StateProcessing)

	u.RecordAnalysis("a-1")
	u.RecordAnalysis("a-2")

	require.Equal(t, StateMainMenu, u.State)
	require.Equal(t, "a-2", u.LastAnalysisID)
	require.Equal(t, 2, u.Checks)
}

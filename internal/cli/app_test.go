package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mlevkov/pagekeeper/internal/config"
	"github.com/mlevkov/pagekeeper/internal/publish"
)

func TestRunPublish_BusyGuard(t *testing.T) {
	a := &App{busy: true}

	called := false
	err := a.runPublish(func(observe publish.Observer) (string, error) {
		called = true
		return "sha", nil
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestRunPublish_ClearsGuard(t *testing.T) {
	a := &App{}

	err := a.runPublish(func(observe publish.Observer) (string, error) {
		assert.True(t, a.busy)
		return "", errors.New("boom")
	})
	require.Error(t, err)
	assert.False(t, a.busy)
}

func TestGetStatus(t *testing.T) {
	a := &App{config: &config.Config{Owner: "alice", Repo: "site", Branch: "main"}}

	assert.Equal(t, "", a.getStatus())
	a.loggedIn = true
	assert.Equal(t, "(alice/site@main)", a.getStatus())
}

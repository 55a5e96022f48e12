package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"claude-review-dashboard/internal/domain/service"
	apperrors "claude-review-dashboard/pkg/errors"
)

func TestGitHubRunner_NoRepositories(t *testing.T) {
	called := false
	runner := NewGitHubRunner(func(context.Context) (service.WorkflowSource, error) {
		called = true
		return nil, nil
	}, nil, GitHubImporterOptions{})

	_, err := runner.Import(context.Background())
	require.Error(t, err)
	assert.False(t, called, "token is not resolved without repositories")
}

func TestGitHubRunner_FactoryError(t *testing.T) {
	runner := NewGitHubRunner(func(context.Context) (service.WorkflowSource, error) {
		return nil, errors.New("secret not found")
	}, nil, GitHubImporterOptions{Repositories: []string{"acme/api"}})

	_, err := runner.Import(context.Background())
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.CodeGitHubError, appErr.Code)
}

func TestGitHubRunner_WithRepositories(t *testing.T) {
	base := NewGitHubRunner(nil, nil, GitHubImporterOptions{Repositories: []string{"acme/api"}})
	override := base.WithRepositories([]string{"acme/web", "acme/cli"})

	assert.Equal(t, []string{"acme/api"}, base.opts.Repositories)
	assert.Equal(t, []string{"acme/web", "acme/cli"}, override.opts.Repositories)
}

package importer

import (
	"context"

	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/internal/domain/service"
	apperrors "claude-review-dashboard/pkg/errors"
)

// SourceFactory 为每次导入构建工作流数据源，令牌在此时解析
type SourceFactory func(ctx context.Context) (service.WorkflowSource, error)

// GitHubRunner 按需构建 GitHubImporter 并执行一次导入
type GitHubRunner struct {
	factory SourceFactory
	repo    repository.UsageRecordRepository
	opts    GitHubImporterOptions
}

// NewGitHubRunner 创建导入执行器
func NewGitHubRunner(factory SourceFactory, repo repository.UsageRecordRepository, opts GitHubImporterOptions) *GitHubRunner {
	return &GitHubRunner{factory: factory, repo: repo, opts: opts}
}

// Import 执行一次 GitHub 导入
func (r *GitHubRunner) Import(ctx context.Context) (*ImportReport, error) {
	if len(r.opts.Repositories) == 0 {
		return nil, apperrors.ErrImportFailed.WithDetail("no repositories configured")
	}
	source, err := r.factory(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGitHubError, "GitHub access unavailable")
	}
	// 每次导入使用独立随机源，避免并发请求共享
	return NewGitHubImporter(source, r.repo, r.opts, nil).Import(ctx)
}

// WithRepositories 返回使用指定仓库列表的副本
func (r *GitHubRunner) WithRepositories(repos []string) *GitHubRunner {
	cp := *r
	cp.opts.Repositories = append([]string(nil), repos...)
	return &cp
}

package importer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"claude-review-dashboard/internal/domain/entity"
	"claude-review-dashboard/internal/domain/repository"
	"claude-review-dashboard/internal/domain/service"
	"claude-review-dashboard/pkg/logger"
	"claude-review-dashboard/pkg/metrics"
)

// GitHubImporterOptions GitHub 导入参数
type GitHubImporterOptions struct {
	// Repositories owner/name 列表
	Repositories    []string
	RunsPerWorkflow int
	Concurrency     int
	Model           string
}

// GitHubImporter 从 Claude 评审工作流的运行记录导入用量
type GitHubImporter struct {
	source service.WorkflowSource
	repo   repository.UsageRecordRepository
	opts   GitHubImporterOptions

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewGitHubImporter 创建 GitHub 导入器
func NewGitHubImporter(source service.WorkflowSource, repo repository.UsageRecordRepository, opts GitHubImporterOptions, rnd *rand.Rand) *GitHubImporter {
	if opts.RunsPerWorkflow <= 0 || opts.RunsPerWorkflow > 100 {
		opts.RunsPerWorkflow = 100
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 1))
	}
	return &GitHubImporter{
		source: source,
		repo:   repo,
		opts:   opts,
		rnd:    rnd,
	}
}

// IsReviewWorkflow 工作流名同时包含 claude 以及 review 或 cost
func IsReviewWorkflow(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "claude") && (strings.Contains(n, "review") || strings.Contains(n, "cost"))
}

// Import 并发处理配置的仓库；单个仓库或记录的失败写入报告，不中断导入
func (g *GitHubImporter) Import(ctx context.Context) (*ImportReport, error) {
	report := newReport(SourceGitHub)

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(g.opts.Concurrency)
	for _, fullName := range g.opts.Repositories {
		fullName := strings.TrimSpace(fullName)
		if fullName == "" {
			continue
		}
		eg.Go(func() error {
			g.importRepository(egCtx, fullName, report)
			return nil
		})
	}
	_ = eg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report.finish()
	logger.Info(ctx, "github import finished",
		"imported", report.Imported,
		"errors", len(report.Errors),
	)
	return report, nil
}

func (g *GitHubImporter) importRepository(ctx context.Context, fullName string, report *ImportReport) {
	owner, name, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || name == "" {
		report.addError(fmt.Sprintf("Invalid repository %q", fullName))
		return
	}

	workflows, err := g.source.ListWorkflows(ctx, owner, name)
	if err != nil {
		logger.Error(ctx, "failed to list workflows", err, "repository", fullName)
		report.addError(fmt.Sprintf("Failed to process %s", fullName))
		return
	}

	for _, wf := range workflows {
		if !IsReviewWorkflow(wf.Name) {
			continue
		}

		runs, err := g.source.ListRuns(ctx, owner, name, wf.ID, g.opts.RunsPerWorkflow)
		if err != nil {
			logger.Warn(ctx, "failed to list workflow runs",
				"repository", fullName,
				"workflow", wf.Name,
				"error", err,
			)
			report.addError(fmt.Sprintf("Failed to list runs for %s workflow %q", fullName, wf.Name))
			continue
		}

		for _, run := range runs {
			if run.Status != "completed" {
				continue
			}
			record := g.buildRecord(fullName, owner, wf, run)
			if err := record.Validate(); err != nil {
				report.addError(fmt.Sprintf("Skipped review %s: %v", record.ReviewID, err))
				metrics.ImportRecordsTotal.WithLabelValues(SourceGitHub, "invalid").Inc()
				continue
			}
			if err := g.repo.Put(ctx, record); err != nil {
				logger.Error(ctx, "failed to store review", err, "review_id", record.ReviewID)
				report.addError(fmt.Sprintf("Failed to store review %s", record.ReviewID))
				metrics.ImportRecordsTotal.WithLabelValues(SourceGitHub, "error").Inc()
				continue
			}
			report.addImported(record.TotalCost)
			metrics.ImportRecordsTotal.WithLabelValues(SourceGitHub, "ok").Inc()
		}
	}
}

func (g *GitHubImporter) buildRecord(fullName, owner string, wf service.Workflow, run service.WorkflowRun) *entity.UsageRecord {
	inputTokens, outputTokens := g.estimateTokens()

	created := run.CreatedAt.UTC()
	duration := run.UpdatedAt.Sub(run.CreatedAt).Seconds()
	if duration < 0 {
		duration = 0
	}

	return &entity.UsageRecord{
		ReviewID:        fmt.Sprintf("github-%d", run.ID),
		Timestamp:       created.Format(time.RFC3339),
		PRNumber:        run.PRNumber,
		Repository:      fullName,
		Organization:    owner,
		Model:           g.opts.Model,
		InputTokens:     inputTokens,
		OutputTokens:    outputTokens,
		TotalCost:       math.Round(entity.CalculateCost(inputTokens, outputTokens)*1e4) / 1e4,
		ReviewType:      entity.ReviewTypeStandard,
		DurationSeconds: math.Round(duration*10) / 10,
		Month:           created.Format("2006-01"),
		Metadata: map[string]any{
			"workflow_name": wf.Name,
			"run_id":        run.ID,
			"run_url":       run.HTMLURL,
			"imported":      true,
		},
	}
}

// estimateTokens 运行日志中没有 token 数据，按区间估算
func (g *GitHubImporter) estimateTokens() (int64, int64) {
	g.rndMu.Lock()
	defer g.rndMu.Unlock()
	return int64(g.rnd.IntN(50000) + 10000), int64(g.rnd.IntN(5000) + 1000)
}

// Package github 基于 go-github 的工作流与身份查询实现
package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v69/github"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"claude-review-dashboard/internal/config"
	"claude-review-dashboard/internal/domain/service"
)

var tracer = otel.Tracer("github")

// 单页最大条数
const maxPerPage = 100

// ErrMissingToken 未配置 GitHub 令牌
var ErrMissingToken = errors.New("github: token not configured")

// Client GitHub REST 客户端
type Client struct {
	gh         *github.Client
	httpClient *http.Client
	baseURL    *url.URL
}

var (
	_ service.WorkflowSource   = (*Client)(nil)
	_ service.IdentityProvider = (*Client)(nil)
)

// NewClient 创建客户端；token 为空时只能用于 CurrentUser
func NewClient(token string, httpClient *http.Client) *Client {
	gh := github.NewClient(httpClient)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	return &Client{gh: gh, httpClient: httpClient}
}

// WithBaseURL 指向 GitHub Enterprise 或测试服务器
func (c *Client) WithBaseURL(raw string) (*Client, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid github base url: %w", err)
	}
	c.baseURL = u
	c.gh.BaseURL = u
	return c, nil
}

// ListWorkflows 列出仓库全部工作流
func (c *Client) ListWorkflows(ctx context.Context, owner, repo string) ([]service.Workflow, error) {
	ctx, span := tracer.Start(ctx, "github.ListWorkflows",
		trace.WithAttributes(attribute.String("github.repo", owner+"/"+repo)))
	defer span.End()

	var out []service.Workflow
	opts := &github.ListOptions{PerPage: maxPerPage}
	for {
		page, resp, err := c.gh.Actions.ListWorkflows(ctx, owner, repo, opts)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("list workflows for %s/%s: %w", owner, repo, err)
		}
		for _, wf := range page.Workflows {
			out = append(out, service.Workflow{ID: wf.GetID(), Name: wf.GetName()})
		}
		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}
	return out, nil
}

// ListRuns 返回工作流最近 limit 条运行记录
func (c *Client) ListRuns(ctx context.Context, owner, repo string, workflowID int64, limit int) ([]service.WorkflowRun, error) {
	ctx, span := tracer.Start(ctx, "github.ListRuns",
		trace.WithAttributes(
			attribute.String("github.repo", owner+"/"+repo),
			attribute.Int64("github.workflow_id", workflowID),
		))
	defer span.End()

	if limit <= 0 || limit > maxPerPage {
		limit = maxPerPage
	}
	runs, _, err := c.gh.Actions.ListWorkflowRunsByID(ctx, owner, repo, workflowID, &github.ListWorkflowRunsOptions{
		ListOptions: github.ListOptions{PerPage: limit},
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list runs for %s/%s workflow %d: %w", owner, repo, workflowID, err)
	}

	out := make([]service.WorkflowRun, 0, len(runs.WorkflowRuns))
	for _, run := range runs.WorkflowRuns {
		wr := service.WorkflowRun{
			ID:        run.GetID(),
			Status:    run.GetStatus(),
			HTMLURL:   run.GetHTMLURL(),
			CreatedAt: run.GetCreatedAt().Time,
			UpdatedAt: run.GetUpdatedAt().Time,
		}
		if len(run.PullRequests) > 0 {
			wr.PRNumber = run.PullRequests[0].GetNumber()
		}
		out = append(out, wr)
	}
	return out, nil
}

// CurrentUser 用调用方提供的令牌查询 GET /user
func (c *Client) CurrentUser(ctx context.Context, token string) (*service.GitHubUser, error) {
	ctx, span := tracer.Start(ctx, "github.CurrentUser")
	defer span.End()

	gh := github.NewClient(c.httpClient).WithAuthToken(token)
	if c.baseURL != nil {
		gh.BaseURL = c.baseURL
	}
	user, _, err := gh.Users.Get(ctx, "")
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get authenticated user: %w", err)
	}
	return &service.GitHubUser{
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
	}, nil
}

// ResolveToken 优先使用配置中的令牌，否则从密钥服务读取
func ResolveToken(ctx context.Context, cfg config.GitHubConfig, secrets service.SecretProvider) (string, error) {
	if tok := strings.TrimSpace(cfg.Token); tok != "" {
		return tok, nil
	}
	if cfg.TokenSecretID == "" || secrets == nil {
		return "", ErrMissingToken
	}
	tok, err := secrets.GetSecret(ctx, cfg.TokenSecretID)
	if err != nil {
		return "", fmt.Errorf("resolve github token: %w", err)
	}
	if tok = strings.TrimSpace(tok); tok == "" {
		return "", ErrMissingToken
	}
	return tok, nil
}

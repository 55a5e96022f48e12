package service

import (
	"context"
	"time"
)

// Workflow GitHub Actions 工作流
type Workflow struct {
	ID   int64
	Name string
}

// WorkflowRun 一次工作流运行
type WorkflowRun struct {
	ID        int64
	Status    string
	HTMLURL   string
	PRNumber  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GitHubUser 令牌对应的 GitHub 用户
type GitHubUser struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}

// WorkflowSource 读取仓库的工作流与运行记录。
// 该接口位于 domain/service，作为导入器与 GitHub 客户端之间的稳定契约。
type WorkflowSource interface {
	ListWorkflows(ctx context.Context, owner, repo string) ([]Workflow, error)
	ListRuns(ctx context.Context, owner, repo string, workflowID int64, limit int) ([]WorkflowRun, error)
}

// IdentityProvider 校验 GitHub 访问令牌并返回用户信息
type IdentityProvider interface {
	CurrentUser(ctx context.Context, token string) (*GitHubUser, error)
}

// SecretProvider 按 ID 读取字符串密钥
type SecretProvider interface {
	GetSecret(ctx context.Context, id string) (string, error)
}

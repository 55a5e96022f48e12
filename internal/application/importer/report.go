// Package importer 提供历史用量回填与 GitHub 工作流导入
package importer

import (
	"errors"
	"sync"
)

// ErrAlreadySeeded 用量表中已有数据，跳过回填以避免重复
var ErrAlreadySeeded = errors.New("usage table already contains data")

// 导入来源
const (
	SourceHistorical = "historical"
	SourceGitHub     = "github"
)

// ImportReport 导入结果
type ImportReport struct {
	Message     string   `json:"message"`
	Source      string   `json:"source"`
	Imported    int      `json:"imported"`
	Batches     int      `json:"batches,omitempty"`
	TotalCost   float64  `json:"total_cost"`
	AverageCost float64  `json:"average_cost"`
	Errors      []string `json:"errors,omitempty"`

	mu sync.Mutex
}

func newReport(source string) *ImportReport {
	return &ImportReport{Message: "Import completed", Source: source}
}

func (r *ImportReport) addImported(cost float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Imported++
	r.TotalCost += cost
}

func (r *ImportReport) addError(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Errors = append(r.Errors, msg)
}

func (r *ImportReport) finish() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Imported > 0 {
		r.AverageCost = r.TotalCost / float64(r.Imported)
	}
}

package handler

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"jira_gateway/internal/config"
	"jira_gateway/internal/model"
)

// pageMeta builds the pagination block for a result list. total_pages is
// ceil(total/pageSize), zero when total is zero.
func pageMeta(total, page, pageSize int) model.Pagination {
	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return model.Pagination{
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// paginate slices a fully-fetched result list. A page past the end yields an
// empty slice with metadata still reflecting the true total. A start offset
// that overflowed negative is past the end too.
func paginate(items []model.Issue, page, pageSize int) ([]model.Issue, model.Pagination) {
	meta := pageMeta(len(items), page, pageSize)
	start := (page - 1) * pageSize
	if start < 0 || start >= len(items) {
		return []model.Issue{}, meta
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], meta
}

// pageParams extracts page and page_size from the request data. page is
// clamped to >= 1; page_size falls back to the default and is silently
// clamped to the configured maximum.
func (h *CommandHandler) pageParams(data map[string]any) (page, pageSize int) {
	page = intField(data, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize = intField(data, "page_size", config.DefaultPageSize)
	if pageSize < 1 {
		pageSize = config.DefaultPageSize
	}
	if pageSize > h.cfg.JiraMaxResults {
		pageSize = h.cfg.JiraMaxResults
	}
	// keep (page-1)*pageSize from overflowing into a negative offset
	if page > math.MaxInt/pageSize {
		page = math.MaxInt / pageSize
	}
	return page, pageSize
}

func stringField(data map[string]any, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

func boolField(data map[string]any, key string) bool {
	b, _ := data[key].(bool)
	return b
}

// intField tolerates the numeric shapes JSON decoding can produce.
func intField(data map[string]any, key string, def int) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return i
		}
	}
	return def
}

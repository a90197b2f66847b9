package config

import (
	"fmt"
	"net/url"
	"slices"
	"strings"

	"issuetrack/internal/model"
)

// ValidationError is a single invalid config value.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate returns every invalid value in c.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError

	u, err := url.Parse(strings.TrimSpace(c.API.BaseURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, ValidationError{Field: "api.base_url", Value: c.API.BaseURL, Message: "must be an absolute http(s) URL"})
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, ValidationError{Field: "api.base_url", Value: c.API.BaseURL, Message: "scheme must be http or https"})
	}
	if c.API.TimeoutSeconds < 0 {
		errs = append(errs, ValidationError{Field: "api.timeout_seconds", Value: c.API.TimeoutSeconds, Message: "must be >= 0"})
	}

	if c.List.PageSize < 1 || c.List.PageSize > model.MaxPageSize {
		errs = append(errs, ValidationError{Field: "list.page_size", Value: c.List.PageSize, Message: fmt.Sprintf("must be between 1 and %d", model.MaxPageSize)})
	}
	if _, err := model.ParseSortField(c.List.SortBy); err != nil {
		errs = append(errs, ValidationError{Field: "list.sort_by", Value: c.List.SortBy, Message: "unknown sort field"})
	}

	if c.TUI.NotifySeconds < 1 {
		errs = append(errs, ValidationError{Field: "tui.notify_seconds", Value: c.TUI.NotifySeconds, Message: "must be >= 1"})
	}

	if !slices.Contains(ValidLogLevels(), strings.ToLower(strings.TrimSpace(c.Logging.Level))) {
		errs = append(errs, ValidationError{Field: "logging.level", Value: c.Logging.Level, Message: "must be one of " + strings.Join(ValidLogLevels(), ", ")})
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, ValidationError{Field: "server.addr", Value: c.Server.Addr, Message: "must not be empty"})
	}
	return errs
}

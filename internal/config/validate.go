package config

import (
	"fmt"
	"strings"

	"parley/internal/language"
)

// Validate checks cross-field constraints after normalization.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Paths.WorkspaceDir) == "" {
		problems = append(problems, "paths.workspace_dir must not be empty")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		problems = append(problems, "paths.log_dir must not be empty")
	}
	if c.Save.Backup && strings.TrimSpace(c.Paths.BackupDir) == "" {
		problems = append(problems, "paths.backup_dir must be set when save.backup is enabled")
	}

	if c.Dialogue.DefaultLanguage != "" {
		if _, ok := language.Parse(c.Dialogue.DefaultLanguage); !ok {
			problems = append(problems, fmt.Sprintf("dialogue.default_language: unknown code %q", c.Dialogue.DefaultLanguage))
		}
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "console", "json":
	default:
		problems = append(problems, fmt.Sprintf("logging.format: unsupported value %q", c.Logging.Format))
	}
	switch strings.ToLower(strings.TrimSpace(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("logging.level: unsupported value %q", c.Logging.Level))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n  - %s", strings.Join(problems, "\n  - "))
	}
	return nil
}

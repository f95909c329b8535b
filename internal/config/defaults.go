package config

const (
	defaultWorkspaceDir    = "~/.local/share/parley"
	defaultLogDir          = "~/.local/share/parley/logs"
	defaultBackupDir       = "~/.local/share/parley/backups"
	defaultLanguage        = "en"
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultBackupOnSave    = true
	defaultUpdateWordCount = true
	defaultCatalogEnabled  = true
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			WorkspaceDir: defaultWorkspaceDir,
			LogDir:       defaultLogDir,
			BackupDir:    defaultBackupDir,
		},
		Save: Save{
			Backup:          defaultBackupOnSave,
			UpdateWordCount: defaultUpdateWordCount,
		},
		Dialogue: Dialogue{
			DefaultLanguage: defaultLanguage,
		},
		Catalog: Catalog{
			Enabled: defaultCatalogEnabled,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

package main

import (
	"fmt"
	"os"

	"parley/internal/config"
	"parley/internal/fileutil"
	"parley/internal/gff"
	"parley/internal/language"
)

// document bundles a decoded container with its raw bytes and source path.
type document struct {
	path string
	raw  []byte
	file *gff.File
}

func loadDocument(path string) (*document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	file, err := gff.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return &document{path: path, raw: data, file: file}, nil
}

// saveDocument writes data over path, taking a timestamped backup first when
// configured.
func saveDocument(cfg *config.Config, path string, data []byte) (backupPath string, err error) {
	if cfg.Save.Backup {
		backupPath, err = fileutil.Backup(path, cfg.Paths.BackupDir)
		if err != nil {
			return "", err
		}
	}
	if err := fileutil.WriteAtomic(path, data, 0o644); err != nil {
		return backupPath, err
	}
	return backupPath, nil
}

func familyName(fileType string) string {
	switch fileType {
	case "DLG ":
		return "dialogue"
	case "JRL ":
		return "journal"
	case "UTC ":
		return "creature"
	default:
		return fmt.Sprintf("unknown (%q)", fileType)
	}
}

// textFor selects the variant of loc for lang, preferring the neutral form,
// then any gendered form, then whatever substring comes first.
func textFor(loc gff.LocString, lang language.ID) string {
	for _, gender := range []language.Gender{0, 1} {
		want := language.EncodeID(lang, gender)
		for _, sub := range loc.Substrings {
			if sub.ID == want {
				return sub.Text
			}
		}
	}
	return loc.First()
}

// resolveLanguage picks the dump language: an explicit flag wins, otherwise
// the configured default.
func resolveLanguage(cfg *config.Config, flag string) (language.ID, error) {
	code := flag
	if code == "" && cfg != nil {
		code = cfg.Dialogue.DefaultLanguage
	}
	if code == "" {
		return language.English, nil
	}
	id, ok := language.Parse(code)
	if !ok {
		return 0, fmt.Errorf("unknown language code %q", code)
	}
	return id, nil
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

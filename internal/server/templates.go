// internal/server/templates.go
package server

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

//go:embed web/templates web/static
var rawContent embed.FS

// webContent holds the virtual filesystem for web assets.
var webContent fs.FS

func init() {
	var err error
	webContent, err = fs.Sub(rawContent, "web")
	if err != nil {
		panic(fmt.Sprintf("failed to create virtual filesystem for web content: %v", err))
	}
}

// extractWebContent extracts embedded web content to the configured WebPath so
// templates and static files can be customized on disk.
func (s *Server) extractWebContent(forceUpdate bool) error {
	dirs := []string{
		filepath.Join(s.config.WebPath, "templates", "admin"),
		filepath.Join(s.config.WebPath, "static", "videos"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return fs.WalkDir(webContent, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("error walking embedded content at %s: %w", path, err)
		}
		if path == "." {
			return nil
		}
		localPath := filepath.Join(s.config.WebPath, path)
		if d.IsDir() {
			return os.MkdirAll(localPath, 0755)
		}

		needsUpdate := forceUpdate
		if !needsUpdate {
			stat, statErr := os.Stat(localPath)
			if os.IsNotExist(statErr) {
				needsUpdate = true
			} else if statErr != nil {
				return fmt.Errorf("failed to stat local file %s: %w", localPath, statErr)
			} else {
				embeddedFile, openErr := webContent.Open(path)
				if openErr != nil {
					return fmt.Errorf("failed to open embedded file %s: %w", path, openErr)
				}
				embeddedStat, statErrIn := embeddedFile.Stat()
				embeddedFile.Close()
				if statErrIn != nil {
					return fmt.Errorf("failed to stat embedded file %s: %w", path, statErrIn)
				}
				needsUpdate = stat.Size() != embeddedStat.Size()
			}
		}

		if needsUpdate {
			content, readErr := fs.ReadFile(webContent, path)
			if readErr != nil {
				return fmt.Errorf("failed to read embedded file %s: %w", path, readErr)
			}
			if writeErr := os.WriteFile(localPath, content, 0644); writeErr != nil {
				return fmt.Errorf("failed to write file %s: %w", localPath, writeErr)
			}
			if !s.config.ProductionMode {
				s.logger.Printf("Updated: %s", localPath)
			}
		}
		return nil
	})
}

func (s *Server) registerTemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTimeInZone": func(tz string, t time.Time) string {
			loc, err := time.LoadLocation(tz)
			if err != nil {
				return t.UTC().Format("02/01/06 15:04")
			}
			return t.In(loc).Format("02/01/06 15:04")
		},
		"formatEpochMillis": func(ms int64) string {
			if ms == 0 {
				return ""
			}
			return time.UnixMilli(ms).UTC().Format("02/01/06 15:04")
		},
	}
}

// LoadTemplates parses all HTML templates from webPath and returns a map of
// parsed templates keyed by relative path. Admin pages are parsed together
// with the admin layout.
func LoadTemplates(webPath string, funcMap template.FuncMap) (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template)
	templatesDir := filepath.Join(webPath, "templates")
	adminLayoutFile := "layout.html"
	adminLayoutPath := filepath.Join(templatesDir, "admin", adminLayoutFile)

	err := filepath.Walk(templatesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || !strings.HasSuffix(info.Name(), ".html") {
			return nil
		}

		relPath, err := filepath.Rel(templatesDir, path)
		if err != nil {
			return fmt.Errorf("failed to get relative path for %s: %w", path, err)
		}
		templateName := filepath.ToSlash(relPath)

		var tmpl *template.Template
		if strings.HasPrefix(templateName, "admin/") && info.Name() != adminLayoutFile {
			if _, statErr := os.Stat(adminLayoutPath); os.IsNotExist(statErr) {
				return fmt.Errorf("admin layout template not found at %s, required by %s", adminLayoutPath, path)
			}
			tmpl, err = template.New(templateName).Funcs(funcMap).ParseFiles(adminLayoutPath, path)
			if err != nil {
				return fmt.Errorf("failed to parse admin template %s: %w", path, err)
			}
		} else if templateName == "admin/"+adminLayoutFile {
			// Parsed together with each admin page.
			return nil
		} else {
			tmpl, err = template.New(templateName).Funcs(funcMap).ParseFiles(path)
			if err != nil {
				return fmt.Errorf("failed to parse template %s: %w", path, err)
			}
		}
		templates[templateName] = tmpl
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error walking templates directory %s: %w", templatesDir, err)
	}

	return templates, nil
}

// renderTemplate executes a cached template, wrapping the data with the CSRF
// token the admin forms submit back.
func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name string, data any) error {
	tmpl, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found in cache", name)
	}

	wrapped := struct {
		Data      any
		CSRFToken string
	}{
		Data:      data,
		CSRFToken: s.csrf.Token(w, r),
	}

	if strings.HasPrefix(name, "admin/") {
		return tmpl.ExecuteTemplate(w, "layout", wrapped)
	}
	return tmpl.ExecuteTemplate(w, filepath.Base(name), wrapped)
}

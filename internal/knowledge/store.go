// Package knowledge manages the investigator's markdown knowledge base: a
// directory of files holding discovered tooling, known issues, cluster
// topology notes, and saved incident reports.
package knowledge

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/clusterscope/evidence-core/pkg/logger"
)

// ErrNotFound is returned when a requested knowledge file does not exist.
var ErrNotFound = errors.New("knowledge file not found")

// ErrBadName is returned for names that escape the knowledge base root.
var ErrBadName = errors.New("invalid knowledge file name")

const reportsDir = "reports"

// SearchMatch is one matching line from a knowledge base search.
type SearchMatch struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Text string `json:"text"`
}

type Store struct {
	root   string
	logger logger.Logger
}

func NewStore(root string, log logger.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Join(root, reportsDir), 0o755); err != nil {
		return nil, fmt.Errorf("create knowledge base at %s: %w", root, err)
	}
	return &Store{root: root, logger: log}, nil
}

// ListFiles returns the relative paths of all markdown files, sorted.
func (s *Store) ListFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(s.root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".md") {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func (s *Store) ReadFile(name string) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (s *Store) WriteFile(name, content string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return err
	}
	s.logger.Info("Knowledge file written", "file", name, "bytes", len(content))
	return nil
}

// AppendFile appends to an existing file; the file must already exist so a
// typo in the name surfaces instead of silently creating a new file.
func (s *Store) AppendFile(name, content string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		return err
	}
	s.logger.Info("Knowledge file appended", "file", name, "bytes", len(content))
	return nil
}

// Search scans every markdown file for lines containing the query
// (case-insensitive exact substring) and returns the matching lines with
// their locations.
func (s *Store) Search(query string) ([]SearchMatch, error) {
	files, err := s.ListFiles()
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(query)

	var matches []SearchMatch
	for _, name := range files {
		content, err := s.ReadFile(name)
		if err != nil {
			return nil, err
		}
		for i, line := range strings.Split(content, "\n") {
			if strings.Contains(strings.ToLower(line), needle) {
				matches = append(matches, SearchMatch{
					File: name,
					Line: i + 1,
					Text: strings.TrimSpace(line),
				})
			}
		}
	}
	return matches, nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// SaveReport stores an incident report under reports/ with a dated,
// collision-free name and returns the relative path.
func (s *Store) SaveReport(alertName, content string) (string, error) {
	slug := strings.Trim(slugRe.ReplaceAllString(strings.ToLower(alertName), "-"), "-")
	if slug == "" {
		slug = "incident"
	}
	date := time.Now().UTC().Format("2006-01-02")

	for seq := 1; seq <= 999; seq++ {
		name := fmt.Sprintf("%s/%s-%s-%03d.md", reportsDir, date, slug, seq)
		path, err := s.resolve(name)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := s.WriteFile(name, content); err != nil {
			return "", err
		}
		return name, nil
	}
	return "", fmt.Errorf("report name space exhausted for %s on %s", slug, date)
}

// RecentReports returns up to limit report paths, newest first by name
// (names sort chronologically by construction).
func (s *Store) RecentReports(limit int) ([]string, error) {
	files, err := s.ListFiles()
	if err != nil {
		return nil, err
	}
	var reports []string
	for _, f := range files {
		if strings.HasPrefix(f, reportsDir+"/") {
			reports = append(reports, f)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(reports)))
	if limit > 0 && len(reports) > limit {
		reports = reports[:limit]
	}
	return reports, nil
}

// resolve maps a relative name onto the root, rejecting anything that would
// escape it.
func (s *Store) resolve(name string) (string, error) {
	if name == "" || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	clean := filepath.Clean(filepath.FromSlash(name))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrBadName, name)
	}
	return filepath.Join(s.root, clean), nil
}

package output

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sustainthread/sustainnews/internal/pipeline"
)

// Document is the frontend contract. Field names, ordering and the item cap
// are load-bearing: the rendering side depends on this exact shape.
type Document struct {
	Status       string    `json:"status"`
	TotalResults int       `json:"totalResults"`
	Articles     []Article `json:"articles"`
}

type Article struct {
	Source      SourceRef `json:"source"`
	Author      string    `json:"author"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	PublishedAt string    `json:"publishedAt"`
	Content     string    `json:"content"`
}

type SourceRef struct {
	Name string `json:"name"`
}

// Build converts the run's selection into the output document. Items with no
// structured publish time serialize with the run time, so downstream always
// sees a valid timestamp.
func Build(items []pipeline.Scored, now time.Time) Document {
	doc := Document{
		Status:       "ok",
		TotalResults: len(items),
		Articles:     make([]Article, 0, len(items)),
	}
	for _, it := range items {
		published := it.Published
		if !it.TimeKnown {
			published = now
		}
		doc.Articles = append(doc.Articles, Article{
			Source:      SourceRef{Name: it.Source},
			Author:      it.Source,
			Title:       it.Title,
			Description: it.Description,
			URL:         it.URL,
			PublishedAt: published.Format(time.RFC3339),
			Content:     excerpt(it.Description),
		})
	}
	return doc
}

const excerptLength = 200

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptLength {
		return s
	}
	return string(runes[:excerptLength])
}

// Write renders the document to path as indented JSON.
func Write(doc Document, path string) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// WriteBackup writes a timestamped copy next to the main output for
// debugging failed or surprising runs. Returns the backup path.
func WriteBackup(doc Document, path string, now time.Time) (string, error) {
	dir := filepath.Dir(path)
	backup := filepath.Join(dir, fmt.Sprintf("news_backup_%s.json", now.Format("20060102_150405")))
	if err := Write(doc, backup); err != nil {
		return "", err
	}
	return backup, nil
}

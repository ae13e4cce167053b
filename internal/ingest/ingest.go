package ingest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/ledongthuc/pdf"

	"github.com/verdevalley/concierge/internal/rag"
	"github.com/verdevalley/concierge/internal/store"
)

// insertBatchSize bounds one datastore insert call.
const insertBatchSize = 100

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".html": true,
	".htm":  true,
	".pdf":  true,
}

// Ingestor runs the document pipeline: text, chunks, embeddings, rows.
type Ingestor struct {
	embedder rag.Embedder
	store    store.Store
	logger   *slog.Logger
}

// NewIngestor builds an Ingestor.
func NewIngestor(embedder rag.Embedder, st store.Store, logger *slog.Logger) *Ingestor {
	return &Ingestor{embedder: embedder, store: st, logger: logger}
}

// IngestPath ingests a file, every supported file in a directory, or a web
// page when the path is an http(s) URL.
func (i *Ingestor) IngestPath(ctx context.Context, path string) error {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return i.IngestURL(ctx, path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return i.ingestDir(ctx, path)
	}
	return i.IngestFile(ctx, path)
}

func (i *Ingestor) ingestDir(ctx context.Context, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read dir %s: %w", dir, err)
	}

	var ingested int
	for _, entry := range entries {
		if entry.IsDir() || !textExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		if err := i.IngestFile(ctx, filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
		ingested++
	}
	if ingested == 0 {
		i.logger.Warn("no supported documents found", "dir", dir)
	}
	return nil
}

// IngestFile ingests one text, markdown, HTML, or PDF file.
func (i *Ingestor) IngestFile(ctx context.Context, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !textExtensions[ext] {
		return fmt.Errorf("unsupported file type %s (want .txt, .md, .html, or .pdf)", ext)
	}

	if ext == ".pdf" {
		text, err := extractPDFText(path)
		if err != nil {
			return err
		}
		return i.ingestText(ctx, text, filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	text := string(data)
	if ext == ".html" || ext == ".htm" {
		article, err := readability.FromReader(strings.NewReader(text), nil)
		if err != nil {
			return fmt.Errorf("extract text from %s: %w", path, err)
		}
		text = article.TextContent
	}

	return i.ingestText(ctx, text, filepath.Base(path))
}

// extractPDFText extracts all plain text from a PDF document.
func extractPDFText(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	reader, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", path, err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(reader); err != nil {
		return "", fmt.Errorf("extract text from %s: %w", path, err)
	}
	return buf.String(), nil
}

// IngestURL fetches a web page, extracts its readable text, and ingests it
// under the page URL as the document name.
func (i *Ingestor) IngestURL(ctx context.Context, pageURL string) error {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return fmt.Errorf("parse url %s: %w", pageURL, err)
	}

	article, err := readability.FromURL(pageURL, 30*time.Second)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	name := parsed.Host + parsed.Path
	return i.ingestText(ctx, article.TextContent, name)
}

// Delete removes every chunk whose source file name contains fileName.
func (i *Ingestor) Delete(ctx context.Context, fileName string) error {
	i.logger.Info("deleting document chunks", "file", fileName)
	if err := i.store.DeleteDocumentsByFile(ctx, fileName); err != nil {
		return err
	}
	i.logger.Info("deletion complete", "file", fileName)
	return nil
}

func (i *Ingestor) ingestText(ctx context.Context, text, name string) error {
	i.logger.Info("ingesting", "name", name)

	if strings.TrimSpace(text) == "" {
		i.logger.Warn("no text extracted, skipping", "name", name)
		return nil
	}

	chunks := ChunkText(text, ChunkSize, ChunkOverlap)
	i.logger.Info("split into chunks", "name", name, "chunks", len(chunks))

	embeddings, err := i.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return fmt.Errorf("embed %s: %w", name, err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	docs := make([]store.Document, 0, len(chunks))
	for idx, chunk := range chunks {
		docs = append(docs, store.Document{
			Content:   chunk,
			Embedding: embeddings[idx],
			Metadata:  store.Metadata{FileName: name, Date: now},
		})
	}

	for start := 0; start < len(docs); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := i.store.InsertDocuments(ctx, docs[start:end]); err != nil {
			return fmt.Errorf("insert chunks for %s: %w", name, err)
		}
	}

	i.logger.Info("chunks stored", "name", name, "chunks", len(docs))
	return nil
}

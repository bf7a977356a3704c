package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// IngestService downloads candidate documents (CVs, job descriptions,
// course material) and extracts their plain text.
type IngestService struct {
	httpClient *http.Client
}

func NewIngestService() *IngestService {
	return &IngestService{
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Load fetches a document from a URL or reads it from a local path, extracts
// its text and returns it together with a cleanup function for any temp file.
// The cleanup function is always non-nil and safe to call even when an error
// is returned.
func (s *IngestService) Load(ctx context.Context, source string) (string, func(), error) {
	cleanup := func() {}

	if !isRemoteSource(source) {
		text, err := s.ExtractTextFromPath(source)
		if err != nil {
			return "", cleanup, fmt.Errorf("extract %s: %w", source, err)
		}
		return text, cleanup, nil
	}

	tmpPath, err := s.download(ctx, source)
	if tmpPath != "" {
		cleanup = func() { os.Remove(tmpPath) }
	}
	if err != nil {
		return "", cleanup, err
	}

	text, err := s.ExtractTextFromPath(tmpPath)
	if err != nil {
		return "", cleanup, fmt.Errorf("extract %s: %w", source, err)
	}

	return text, cleanup, nil
}

func isRemoteSource(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

func (s *IngestService) download(ctx context.Context, source string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: unexpected status %d", source, resp.StatusCode)
	}

	suffix := guessSuffix(source, resp.Header.Get("Content-Type"))

	tmp, err := os.CreateTemp("", "ingest-*"+suffix)
	if err != nil {
		return "", err
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return tmp.Name(), fmt.Errorf("save %s: %w", source, err)
	}
	if err := tmp.Close(); err != nil {
		return tmp.Name(), err
	}

	return tmp.Name(), nil
}

// guessSuffix picks the temp file extension from the URL path first, then
// the Content-Type header. PDFs are the common case, so that is the default.
func guessSuffix(source, contentType string) string {
	if u, err := url.Parse(source); err == nil {
		switch ext := strings.ToLower(path.Ext(u.Path)); ext {
		case ".pdf", ".txt", ".docx":
			return ext
		}
	}

	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mediaType {
		case "text/plain":
			return ".txt"
		case "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
			return ".docx"
		case "application/pdf":
			return ".pdf"
		}
	}

	return ".pdf"
}

func (s *IngestService) ExtractTextFromPath(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".txt":
		return s.extractTXT(filePath)
	case ".pdf":
		return s.extractPDF(filePath)
	case ".docx":
		return s.extractDOCX(filePath)
	default:
		return "", fmt.Errorf("unsupported file type for text extraction: %s", ext)
	}
}

func (s *IngestService) extractTXT(filePath string) (string, error) {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return "", err
	}

	text := normalizeExtractedText(string(b))
	if text == "" {
		return "", fmt.Errorf("text file is empty")
	}

	return text, nil
}

func (s *IngestService) extractPDF(filePath string) (string, error) {
	f, reader, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	text := normalizeExtractedText(b.String())
	if text == "" {
		return "", fmt.Errorf("no extractable text found in pdf")
	}

	return text, nil
}

func (s *IngestService) extractDOCX(filePath string) (string, error) {
	r, err := zip.OpenReader(filePath)
	if err != nil {
		return "", err
	}
	defer r.Close()

	var documentXML []byte
	for _, f := range r.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				return "", err
			}
			defer rc.Close()

			documentXML, err = io.ReadAll(rc)
			if err != nil {
				return "", err
			}
			break
		}
	}

	if len(documentXML) == 0 {
		return "", fmt.Errorf("docx document.xml not found")
	}

	text := stripDOCXML(documentXML)
	text = normalizeExtractedText(text)
	if text == "" {
		return "", fmt.Errorf("no extractable text found in docx")
	}

	return text, nil
}

var xmlTagPattern = regexp.MustCompile(`<[^>]+>`)

func stripDOCXML(src []byte) string {
	s := string(src)

	// DOCX paragraphs and line breaks
	s = strings.ReplaceAll(s, "</w:p>", "\n")
	s = strings.ReplaceAll(s, "<w:br/>", "\n")
	s = strings.ReplaceAll(s, "<w:br />", "\n")
	s = strings.ReplaceAll(s, "<w:tab/>", "\t")

	// Remove all xml tags
	s = xmlTagPattern.ReplaceAllString(s, "")

	// Basic XML entities
	replacer := strings.NewReplacer(
		"&amp;", "&",
		"&lt;", "<",
		"&gt;", ">",
		"&quot;", `"`,
		"&apos;", "'",
	)
	s = replacer.Replace(s)

	return s
}

func normalizeExtractedText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	buf := bytes.Buffer{}

	emptyCount := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			emptyCount++
			if emptyCount > 1 {
				continue
			}
			buf.WriteString("\n")
			continue
		}
		emptyCount = 0
		buf.WriteString(trimmed)
		buf.WriteString("\n")
	}

	return strings.TrimSpace(buf.String())
}

// ChunkText slices text into fixed-size chunks for prompt context.
func ChunkText(text string, size int) []string {
	if size <= 0 {
		size = 4000
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []string
	for start := 0; start < len(text); start += size {
		end := start + size
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[start:end])
	}
	return chunks
}

package tools

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
)

// pdfMagic is the leading byte signature of a PDF file.
var pdfMagic = []byte("%PDF")

// bindDownloadPaper resolves the paper download tool.
//
// The tool creates the session's resources folder, downloads the PDF from a
// direct URL, validates the content type and magic bytes, and saves it as
// paper.pdf.
func bindDownloadPaper(opts Options) (Func, error) {
	return func(ctx context.Context, params map[string]any) map[string]any {
		url := stringParam(params, "url")
		videoUUID := stringParam(params, "video_uuid")
		timeout := intParam(params, "timeout", opts.httpTimeout())

		folder := opts.resourcesFolder(videoUUID)
		if err := os.MkdirAll(folder, 0755); err != nil {
			return errorResult(fmt.Sprintf("Failed to create resources folder: %v", err))
		}
		outputFile := filepath.Join(folder, "paper.pdf")

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return errorResultDetails("Failed to download paper from URL",
				map[string]any{"url": url, "error": err.Error()})
		}
		client := &http.Client{Timeout: time.Duration(timeout) * time.Second}
		resp, err := client.Do(req)
		if err != nil {
			return errorResultDetails("Failed to download paper from URL",
				map[string]any{"url": url, "error": err.Error()})
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return errorResultDetails("Failed to download paper from URL",
				map[string]any{"url": url, "status": resp.StatusCode})
		}

		contentType := strings.ToLower(resp.Header.Get("Content-Type"))
		if contentType != "" &&
			!strings.Contains(contentType, "pdf") &&
			!strings.Contains(contentType, "octet-stream") {
			return errorResult(fmt.Sprintf(
				"URL does not point to a PDF file (Content-Type: %s)", contentType))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return errorResultDetails("Failed to download paper from URL",
				map[string]any{"url": url, "error": err.Error()})
		}
		if !bytes.HasPrefix(body, pdfMagic) {
			return errorResult("Downloaded file is not a valid PDF (magic bytes check failed)")
		}

		if err := os.WriteFile(outputFile, body, 0644); err != nil {
			return errorResult(fmt.Sprintf("Failed to save paper: %v", err))
		}

		return successResult(map[string]any{
			"file_path":   outputFile,
			"folder_path": folder,
		})
	}, nil
}

// bindExtractPDFText resolves the PDF text extraction tool.
//
// The tool reads paper.pdf from the session folder, extracts its plain text,
// and writes it to paper.txt alongside.
func bindExtractPDFText(opts Options) (Func, error) {
	return func(_ context.Context, params map[string]any) map[string]any {
		videoUUID := stringParam(params, "video_uuid")
		maxPages := intParam(params, "max_pages", 0)

		folder := opts.resourcesFolder(videoUUID)
		paperPath := filepath.Join(folder, "paper.pdf")
		if !fileExists(paperPath) {
			return errorResultDetails("Paper PDF not found",
				map[string]any{"path": paperPath, "solution": "Run download_paper first"})
		}

		f, reader, err := pdf.Open(paperPath)
		if err != nil {
			return errorResult(fmt.Sprintf("Failed to open PDF: %v", err))
		}
		defer f.Close()

		text, pages, err := extractText(reader, maxPages)
		if err != nil {
			return errorResult(fmt.Sprintf("Failed to extract PDF text: %v", err))
		}

		textPath := filepath.Join(folder, "paper.txt")
		if err := os.WriteFile(textPath, []byte(text), 0644); err != nil {
			return errorResult(fmt.Sprintf("Failed to save extracted text: %v", err))
		}

		return successResult(map[string]any{
			"text_path":  textPath,
			"page_count": pages,
			"char_count": len(text),
		})
	}, nil
}

func extractText(reader *pdf.Reader, maxPages int) (string, int, error) {
	total := reader.NumPage()
	pages := total
	if maxPages > 0 && maxPages < total {
		pages = maxPages
	}

	var sb strings.Builder
	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := page.GetPlainText(nil)
		if err != nil {
			return "", 0, fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(content)
		sb.WriteString("\n")
	}
	return sb.String(), pages, nil
}

func (o Options) httpTimeout() int {
	if o.HTTPTimeoutSeconds > 0 {
		return o.HTTPTimeoutSeconds
	}
	return 30
}

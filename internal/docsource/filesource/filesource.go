package filesource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/akolanti/DocsBot/internal/docsource"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/lu4p/cat"
)

// fileSource serves a corpus document from the local filesystem. The document
// id is the file path; the revision marker is a content hash since files carry
// no revision of their own.
type fileSource struct {
	logger *logger_i.Logger
}

func NewFileSource() docsource.Source {
	return &fileSource{logger: logger_i.NewLogger("FileSource")}
}

func (s *fileSource) Fetch(ctx context.Context, documentID string) (docmodel.Document, error) {
	var text string
	var err error

	switch strings.ToLower(filepath.Ext(documentID)) {
	case ".pdf":
		text, err = s.extractPDF(documentID)
	case ".docx", ".txt", ".rtf", ".odt":
		text, err = cat.File(documentID)
	default:
		err = fmt.Errorf("unsupported document type: %s", documentID)
	}
	if err != nil {
		s.logger.Error("Error extracting document content", "path", documentID, "error", err)
		return docmodel.Document{}, ragerrors.Wrap(ragerrors.ErrSourceFetch, err)
	}

	sum := sha256.Sum256([]byte(text))
	return docmodel.Document{
		ID:             documentID,
		RevisionMarker: hex.EncodeToString(sum[:]),
		Text:           text,
		FetchedAt:      time.Now(),
	}, nil
}

func (s *fileSource) extractPDF(path string) (string, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open pdf: %w", err)
	}

	var b strings.Builder
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}

		content, err := protectExtract(page)
		if err != nil {
			// keep going with the remaining pages
			s.logger.Error("Error parsing page content", "page", i, "error", err)
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// protectExtract guards against the pdf library hanging on a malformed page.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(time.Second * 10):
		return "", errors.New("timeout")
	}
}

package googledocs

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/akolanti/DocsBot/internal/docsource"
	"github.com/akolanti/DocsBot/internal/domain/docmodel"
	"github.com/akolanti/DocsBot/internal/domain/ragerrors"
	"github.com/akolanti/DocsBot/pkg/logger_i"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

type client struct {
	service *docs.Service
	logger  *logger_i.Logger
}

func NewGoogleDocsSource(ctx context.Context, credentialsFile string) (docsource.Source, error) {
	logger := logger_i.NewLogger("GoogleDocs")

	service, err := docs.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(docs.DocumentsReadonlyScope),
	)
	if err != nil {
		logger.Error("Error creating Google Docs service", "error", err)
		return nil, ragerrors.Wrap(ragerrors.ErrSourceFetch, err)
	}

	logger.Info("Google Docs source created")
	return &client{service: service, logger: logger}, nil
}

func (c *client) Fetch(ctx context.Context, documentID string) (docmodel.Document, error) {
	doc, err := c.service.Documents.Get(documentID).IncludeTabsContent(true).Context(ctx).Do()
	if err != nil {
		c.logger.Error("Error fetching document", "documentId", documentID, "error", err)
		return docmodel.Document{}, ragerrors.Wrap(ragerrors.ErrSourceFetch, err)
	}

	text := extractText(doc)

	marker := doc.RevisionId
	if marker == "" {
		sum := sha256.Sum256([]byte(text))
		marker = hex.EncodeToString(sum[:])
	}

	return docmodel.Document{
		ID:             documentID,
		RevisionMarker: marker,
		Text:           text,
		FetchedAt:      time.Now(),
	}, nil
}

// extractText walks every tab in document order, depth first (tabs nest), and
// falls back to the top-level body when the response carries no tabs. Within a
// body: paragraphs as-is, table cells joined per row. Headings keep their own
// line so chunk boundaries can follow them.
func extractText(doc *docs.Document) string {
	var b strings.Builder
	if len(doc.Tabs) > 0 {
		for _, tab := range doc.Tabs {
			writeTab(&b, tab)
		}
		return b.String()
	}
	if doc.Body == nil {
		return ""
	}
	for _, elem := range doc.Body.Content {
		writeStructuralElement(&b, elem)
	}
	return b.String()
}

func writeTab(b *strings.Builder, tab *docs.Tab) {
	if tab == nil {
		return
	}
	if tab.DocumentTab != nil && tab.DocumentTab.Body != nil {
		for _, elem := range tab.DocumentTab.Body.Content {
			writeStructuralElement(b, elem)
		}
	}
	for _, child := range tab.ChildTabs {
		writeTab(b, child)
	}
}

func writeStructuralElement(b *strings.Builder, elem *docs.StructuralElement) {
	switch {
	case elem.Paragraph != nil:
		for _, pe := range elem.Paragraph.Elements {
			if pe.TextRun != nil {
				b.WriteString(pe.TextRun.Content)
			}
		}
	case elem.Table != nil:
		for _, row := range elem.Table.TableRows {
			for _, cell := range row.TableCells {
				for _, cellElem := range cell.Content {
					writeStructuralElement(b, cellElem)
				}
			}
		}
	}
}

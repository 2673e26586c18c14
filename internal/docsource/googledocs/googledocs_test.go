package googledocs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/docs/v1"
)

func paragraph(text string) *docs.StructuralElement {
	return &docs.StructuralElement{
		Paragraph: &docs.Paragraph{
			Elements: []*docs.ParagraphElement{
				{TextRun: &docs.TextRun{Content: text}},
			},
		},
	}
}

func tab(body []*docs.StructuralElement, children ...*docs.Tab) *docs.Tab {
	return &docs.Tab{
		DocumentTab: &docs.DocumentTab{Body: &docs.Body{Content: body}},
		ChildTabs:   children,
	}
}

func TestExtractText_BodyOnlyDocument(t *testing.T) {
	doc := &docs.Document{
		Body: &docs.Body{Content: []*docs.StructuralElement{
			paragraph("Deploys run from main.\n"),
			paragraph("Rollbacks need an approval.\n"),
		}},
	}
	assert.Equal(t, "Deploys run from main.\nRollbacks need an approval.\n", extractText(doc))
}

func TestExtractText_AllTabsInOrder(t *testing.T) {
	doc := &docs.Document{
		// tabbed responses still carry a first-tab body; it must not be
		// double counted
		Body: &docs.Body{Content: []*docs.StructuralElement{
			paragraph("Tab one.\n"),
		}},
		Tabs: []*docs.Tab{
			tab([]*docs.StructuralElement{paragraph("Tab one.\n")},
				tab([]*docs.StructuralElement{paragraph("Nested under one.\n")}),
			),
			tab([]*docs.StructuralElement{paragraph("Tab two.\n")}),
		},
	}

	assert.Equal(t, "Tab one.\nNested under one.\nTab two.\n", extractText(doc))
}

func TestExtractText_TableCells(t *testing.T) {
	doc := &docs.Document{
		Body: &docs.Body{Content: []*docs.StructuralElement{
			{Table: &docs.Table{TableRows: []*docs.TableRow{
				{TableCells: []*docs.TableCell{
					{Content: []*docs.StructuralElement{paragraph("env\n")}},
					{Content: []*docs.StructuralElement{paragraph("prod\n")}},
				}},
			}}},
		}},
	}
	assert.Equal(t, "env\nprod\n", extractText(doc))
}

func TestExtractText_EmptyDocument(t *testing.T) {
	assert.Equal(t, "", extractText(&docs.Document{}))
}

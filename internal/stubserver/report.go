package stubserver

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// buildReport renders the placeholder report PDF the stub serves on download.
func buildReport(taskID string, primary []string, secondary string) ([]byte, error) {
	m := maroto.New()

	m.AddRows(
		text.NewRow(14, "Compliance Analysis Report", props.Text{
			Size:  16,
			Style: fontstyle.Bold,
			Align: align.Center,
		}),
		text.NewRow(8, "Task "+taskID, props.Text{
			Size:  10,
			Align: align.Center,
		}),
		text.NewRow(10, "Reference documents", props.Text{
			Size:  12,
			Style: fontstyle.Bold,
		}),
	)

	for _, name := range primary {
		m.AddRows(text.NewRow(6, name, props.Text{Size: 10}))
	}

	m.AddRows(
		text.NewRow(10, "Reviewed document", props.Text{
			Size:  12,
			Style: fontstyle.Bold,
		}),
		text.NewRow(6, secondary, props.Text{Size: 10}),
		text.NewRow(10, "Generated by the stub analyzer. No compliance checks were performed.", props.Text{
			Size:  9,
			Style: fontstyle.Italic,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	return doc.GetBytes(), nil
}

package jobclient_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurochkinivan/compliance_client/internal/domain"
	"github.com/kurochkinivan/compliance_client/internal/jobclient"
)

func pdfFile(name string, size int64) domain.SelectedFile {
	return domain.SelectedFile{
		Name: name,
		Size: size,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(make([]byte, 16))), nil
		},
	}
}

func TestRegistry_AddFiles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		file         domain.SelectedFile
		wantAccepted bool
		wantNotice   string
	}{
		{
			name:         "valid pdf",
			file:         pdfFile("a.pdf", 10<<10),
			wantAccepted: true,
		},
		{
			name:         "uppercase extension",
			file:         pdfFile("SCAN.PDF", 1<<20),
			wantAccepted: true,
		},
		{
			name:         "exactly at the size limit",
			file:         pdfFile("max.pdf", domain.MaxFileSize),
			wantAccepted: true,
		},
		{
			name:       "wrong extension",
			file:       pdfFile("notes.docx", 1<<10),
			wantNotice: "not a PDF",
		},
		{
			name:       "oversize file",
			file:       pdfFile("big.pdf", 60<<20),
			wantNotice: "exceeds",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			registry := jobclient.NewRegistry(nil)

			notices := registry.AddFiles(domain.SlotPrimary, tt.file)

			if tt.wantAccepted {
				assert.Empty(t, notices)
				assert.Len(t, registry.Files(domain.SlotPrimary), 1)
				return
			}

			require.Len(t, notices, 1)
			assert.Contains(t, notices[0].Message, tt.wantNotice)
			// отклоненный файл не меняет содержимое слота
			assert.Empty(t, registry.Files(domain.SlotPrimary))
		})
	}
}

func TestRegistry_AddFiles_Duplicate(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry(nil)

	require.Empty(t, registry.AddFiles(domain.SlotPrimary, pdfFile("a.pdf", 1<<10)))

	notices := registry.AddFiles(domain.SlotPrimary, pdfFile("a.pdf", 2<<10))

	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Message, "already selected")
	assert.Len(t, registry.Files(domain.SlotPrimary), 1)
}

func TestRegistry_AddFiles_SlotCapacity(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry(nil)

	require.Empty(t, registry.AddFiles(domain.SlotSecondary, pdfFile("a.pdf", 1<<10)))

	notices := registry.AddFiles(domain.SlotSecondary, pdfFile("b.pdf", 1<<10))

	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Message, "at most")
	assert.Len(t, registry.Files(domain.SlotSecondary), 1)
}

func TestRegistry_AddFiles_PreservesInsertionOrder(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry(nil)

	registry.AddFiles(domain.SlotPrimary, pdfFile("first.pdf", 1), pdfFile("second.pdf", 1), pdfFile("third.pdf", 1))

	files := registry.Files(domain.SlotPrimary)
	require.Len(t, files, 3)
	assert.Equal(t, "first.pdf", files[0].Name)
	assert.Equal(t, "second.pdf", files[1].Name)
	assert.Equal(t, "third.pdf", files[2].Name)
}

func TestRegistry_AddFiles_UnknownSlotPanics(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry(nil)

	assert.PanicsWithValue(t, `jobclient: unknown slot "tertiary"`, func() {
		registry.AddFiles("tertiary", pdfFile("a.pdf", 1))
	})
}

func TestRegistry_SubmitEnabled(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry(nil)

	assert.False(t, registry.SubmitEnabled())

	registry.AddFiles(domain.SlotPrimary, pdfFile("a.pdf", 10<<10))
	assert.False(t, registry.SubmitEnabled())

	registry.AddFiles(domain.SlotSecondary, pdfFile("b.pdf", 20<<10))
	assert.True(t, registry.SubmitEnabled())
}

func TestRegistry_RemoveFile_Idempotent(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry(nil)

	registry.AddFiles(domain.SlotPrimary, pdfFile("a.pdf", 1<<10))

	registry.RemoveFile(domain.SlotPrimary, "a.pdf")
	assert.Empty(t, registry.Files(domain.SlotPrimary))

	// повторное удаление ничего не меняет
	registry.RemoveFile(domain.SlotPrimary, "a.pdf")
	assert.Empty(t, registry.Files(domain.SlotPrimary))
}

func TestRegistry_Reset(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry(nil)

	registry.AddFiles(domain.SlotPrimary, pdfFile("a.pdf", 1<<10))
	registry.AddFiles(domain.SlotSecondary, pdfFile("b.pdf", 1<<10))

	registry.Reset()

	assert.Empty(t, registry.Files(domain.SlotPrimary))
	assert.Empty(t, registry.Files(domain.SlotSecondary))
	assert.False(t, registry.SubmitEnabled())
}

func TestRegistry_Selection(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry(nil)

	registry.AddFiles(domain.SlotPrimary, pdfFile("a.pdf", 1<<10), pdfFile("b.pdf", 1<<10))
	registry.AddFiles(domain.SlotSecondary, pdfFile("c.pdf", 1<<10))

	selection := registry.Selection()

	require.Len(t, selection, 2)
	require.Len(t, selection["primary"], 2)
	require.Len(t, selection["secondary"], 1)
	assert.Equal(t, "c.pdf", selection["secondary"][0].Name)
}

func TestRegistry_CustomSlots(t *testing.T) {
	t.Parallel()

	registry := jobclient.NewRegistry([]domain.SlotDef{
		{Name: "regulations", Field: "regulations", Required: true},
		{Name: "attachments", Field: "attachments"},
	})

	registry.AddFiles("regulations", pdfFile("gdpr.pdf", 1<<20))

	// необязательный слот может оставаться пустым
	assert.True(t, registry.SubmitEnabled())

	selection := registry.Selection()
	require.Len(t, selection, 1)
	assert.True(t, strings.HasPrefix(selection["regulations"][0].Name, "gdpr"))
}

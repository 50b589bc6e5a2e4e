package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/xuri/excelize/v2"
)

func TestFormatFromKey(t *testing.T) {
	tests := []struct {
		key  string
		want commonModels.FormatTag
	}{
		{"u/c/n/report.PDF", commonModels.PDF},
		{"a.csv", commonModels.CSV},
		{"deck.pptx", commonModels.PPTX},
		{"sheet.xlsx", commonModels.XLSX},
		{"legacy.xls", commonModels.XLS},
		{"letter.docx", commonModels.DOCX},
		{"readme.md", commonModels.MD},
		{"old.doc", commonModels.UNKNOWN},
		{"notes.txt", commonModels.TXT},
		{"image.png", commonModels.UNKNOWN},
		{"noext", commonModels.UNKNOWN},
	}
	for _, tt := range tests {
		if got := commonModels.FormatFromKey(tt.key); got != tt.want {
			t.Errorf("FormatFromKey(%s) = %v; want %v", tt.key, got, tt.want)
		}
	}
}

func TestExtract_Unsupported(t *testing.T) {
	for _, tag := range []commonModels.FormatTag{commonModels.UNKNOWN, "doc", ""} {
		text, err := Extract([]byte("whatever"), tag, "f")
		if !errors.Is(err, errs.ErrUnsupportedFormat) {
			t.Errorf("tag %q: want ErrUnsupportedFormat, got %v", tag, err)
		}
		if text != "" {
			t.Errorf("tag %q: want empty text, got %q", tag, text)
		}
	}
}

func TestExtract_CSV(t *testing.T) {
	data := []byte("name,qty\napple,3\nbanana,12\n")
	text, err := Extract(data, commonModels.CSV, "fruit.csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d: %q", len(lines), text)
	}
	if !strings.HasPrefix(lines[0], "name") || !strings.Contains(lines[2], "banana") {
		t.Errorf("unexpected table: %q", text)
	}
	// columns are aligned
	if strings.Index(lines[0], "qty") != strings.Index(lines[1], "3") {
		t.Errorf("columns not aligned: %q", text)
	}
}

func TestExtract_XLSX(t *testing.T) {
	f := excelize.NewFile()
	_ = f.SetCellValue("Sheet1", "A1", "city")
	_ = f.SetCellValue("Sheet1", "B1", "population")
	_ = f.SetCellValue("Sheet1", "A2", "Lisbon")
	_ = f.SetCellValue("Sheet1", "B2", 545000)
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatal(err)
	}
	_ = f.SetCellValue("Other", "A1", "second sheet")
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	text, err := Extract(buf.Bytes(), commonModels.XLSX, "cities.xlsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"city", "population", "Lisbon", "545000", "second sheet"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
}

func TestExtract_PPTX(t *testing.T) {
	data := buildPPTX(t, map[string]string{
		"ppt/slides/slide2.xml":  slideXML("Second", "slide"),
		"ppt/slides/slide1.xml":  slideXML("Hello", "world"),
		"ppt/slides/slide10.xml": slideXML("Tenth"),
		"ppt/presentation.xml":   "<p/>",
	})

	text, err := Extract(data, commonModels.PPTX, "deck.pptx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Hello world Second slide Tenth" {
		t.Errorf("unexpected text: %q", text)
	}
}

func TestExtract_TXT(t *testing.T) {
	text, err := Extract([]byte("  plain words \n"), commonModels.TXT, "a.txt")
	if err != nil || text != "plain words" {
		t.Errorf("got %q, %v", text, err)
	}
}

func TestRenderTable_NoTrailingBlanks(t *testing.T) {
	text := renderTable([][]string{{"name", "note"}, {"a much longer name"}, {"x", "y"}})
	for _, line := range strings.Split(text, "\n") {
		if line != strings.TrimRight(line, " ") {
			t.Errorf("trailing blanks in %q", line)
		}
	}
	if !strings.HasPrefix(text, "name") || !strings.Contains(text, "a much longer name\n") {
		t.Errorf("unexpected table: %q", text)
	}
}

func TestExtract_XLS(t *testing.T) {
	data, err := os.ReadFile("testdata/table.xls")
	if err != nil {
		t.Fatal(err)
	}
	text, err := Extract(data, commonModels.XLS, "table.xls")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Code", "Name", "Description", "description11"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
}

func TestExtract_PDF(t *testing.T) {
	data := buildPDF("Hello pdf", "second page")
	text, err := Extract(data, commonModels.PDF, "doc.pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Hello pdf", "second page"} {
		if !strings.Contains(text, want) {
			t.Errorf("missing %q in %q", want, text)
		}
	}
	if strings.Index(text, "Hello") > strings.Index(text, "second") {
		t.Errorf("pages out of order: %q", text)
	}
}

func TestExtract_Documents(t *testing.T) {
	docx := buildZip(t,
		[2]string{"word/document.xml", `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>Hello docx</w:t></w:r></w:p><w:p><w:r><w:t>second paragraph</w:t></w:r></w:p></w:body></w:document>`},
		[2]string{"[Content_Types].xml", "<Types/>"},
	)
	odt := buildZip(t,
		[2]string{"mimetype", "application/vnd.oasis.opendocument.text"},
		[2]string{"content.xml", `<office:document-content xmlns:office="urn:oasis:names:tc:opendocument:xmlns:office:1.0" xmlns:text="urn:oasis:names:tc:opendocument:xmlns:text:1.0"><office:body><office:text><text:p>Hello odt</text:p><text:p>more text</text:p></office:text></office:body></office:document-content>`},
	)

	tests := []struct {
		name string
		tag  commonModels.FormatTag
		data []byte
		want string
	}{
		{"docx", commonModels.DOCX, docx, "Hello docx second paragraph"},
		{"odt", commonModels.ODT, odt, "Hello odt more text"},
		{"rtf", commonModels.RTF, []byte(`{\rtf1\ansi\pard Hello rtf\par}`), "Hello rtf"},
		{"markdown", commonModels.MD, []byte("# Title\n\nbody text\n"), "# Title\n\nbody text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Extract(tt.data, tt.tag, "f."+string(tt.tag))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text != tt.want {
				t.Errorf("got %q; want %q", text, tt.want)
			}
		})
	}
}

func TestExtract_DocumentTagMismatch(t *testing.T) {
	odt := buildZip(t,
		[2]string{"mimetype", "application/vnd.oasis.opendocument.text"},
		[2]string{"content.xml", "<office:document-content/>"},
	)
	tests := []struct {
		name string
		tag  commonModels.FormatTag
		data []byte
	}{
		{"plain text as docx", commonModels.DOCX, []byte("just some words")},
		{"odt as docx", commonModels.DOCX, odt},
		{"plain text as rtf", commonModels.RTF, []byte("no control words here")},
		{"binary as odt", commonModels.ODT, []byte{0x00, 0xff, 0xfe, 0x01, 0x02, 0x80, 0x81}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := Extract(tt.data, tt.tag, "f")
			var exErr *errs.ExtractionError
			if !errors.As(err, &exErr) {
				t.Fatalf("want ExtractionError, got %v (text %q)", err, text)
			}
			if text != "" {
				t.Errorf("want no text, got %q", text)
			}
		})
	}
}

func TestExtract_Malformed(t *testing.T) {
	tests := []commonModels.FormatTag{
		commonModels.PDF, commonModels.PPTX, commonModels.XLSX, commonModels.CSV,
		commonModels.XLS, commonModels.DOCX, commonModels.ODT, commonModels.RTF,
	}
	for _, tag := range tests {
		var input []byte
		if tag != commonModels.CSV {
			input = []byte("definitely not a real file")
		}
		_, err := Extract(input, tag, "bad."+string(tag))
		var exErr *errs.ExtractionError
		if !errors.As(err, &exErr) {
			t.Errorf("%s: want ExtractionError, got %v", tag, err)
			continue
		}
		if exErr.Format != string(tag) || exErr.File != "bad."+string(tag) {
			t.Errorf("%s: error fields not set: %+v", tag, exErr)
		}
	}
}

func slideXML(runs ...string) string {
	var b strings.Builder
	b.WriteString(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"><p:cSld><p:spTree><p:sp><p:txBody><a:p>`)
	for _, r := range runs {
		b.WriteString("<a:r><a:t>" + r + "</a:t></a:r>")
	}
	b.WriteString(`</a:p></p:txBody></p:sp></p:spTree></p:cSld></p:sld>`)
	return b.String()
}

func buildPPTX(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// buildZip writes entries uncompressed and in order, so content sniffing
// sees the first entry name at its fixed offset.
func buildZip(t *testing.T, entries ...[2]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e[0], Method: zip.Store})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(e[1])); err != nil {
			t.Fatal(err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// buildPDF lays out a minimal one-font document with one text line per
// page and a correct xref table.
func buildPDF(pages ...string) []byte {
	var objects []string
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects = append(objects,
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	)
	for i, line := range pages {
		stream := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", line)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"unicode/utf16"
)

func buildDocx(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	var body strings.Builder
	for _, p := range paragraphs {
		fmt.Fprintf(&body, `<w:p><w:r><w:t>%s</w:t></w:r></w:p>`, p)
	}
	files := map[string]string{
		"[Content_Types].xml":          `<?xml version="1.0" encoding="UTF-8"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"></Types>`,
		"word/_rels/document.xml.rels": `<?xml version="1.0" encoding="UTF-8"?><Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`,
		"word/document.xml": `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
			body.String() + `</w:body></w:document>`,
	}
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

// buildPDF writes a single-page PDF with a correct cross-reference table.
func buildPDF(content string) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 5 0 R >>",
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
	}
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractPDF(t *testing.T) {
	data := buildPDF("BT /F1 12 Tf 72 720 Td (Jane Doe Senior Engineer) Tj ET")
	text, err := ExtractTextFromBytes(context.Background(), data, MimePDF, "cv.pdf")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") {
		t.Fatalf("expected name in text, got %q", text)
	}
}

func TestExtractPDFWithoutTextIsRejected(t *testing.T) {
	data := buildPDF("0 0 m 100 100 l S")
	_, err := ExtractTextFromBytes(context.Background(), data, MimePDF, "scan.pdf")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
}

func TestExtractPDFRequiresHeader(t *testing.T) {
	_, err := ExtractTextFromBytes(context.Background(), []byte("hello, not a pdf"), MimePDF, "cv.pdf")
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
}

func TestExtractDOCX(t *testing.T) {
	data := buildDocx(t, "Jane Doe", "jane@example.com", "EXPERIENCE")
	text, err := ExtractTextFromBytes(context.Background(), data, MimeDOCX, "cv.docx")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if text != "Jane Doe\njane@example.com\nEXPERIENCE" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDOCXFromZipMime(t *testing.T) {
	data := buildDocx(t, "Hello")
	if _, err := ExtractTextFromBytes(context.Background(), data, "application/zip", "cv.docx"); err != nil {
		t.Fatalf("expected docx to extract from zip mime, got %v", err)
	}
}

func TestExtractRejectsPlainZip(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, _ := zw.Create("notes.txt")
	_, _ = w.Write([]byte("hello"))
	_ = zw.Close()

	_, err := ExtractTextFromBytes(context.Background(), buf.Bytes(), "application/zip", "notes.zip")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestExtractLegacyDoc(t *testing.T) {
	var data []byte
	data = append(data, oleMagic...)
	data = append(data, 0x00, 0x01, 0x02, 0x03)
	for _, u := range utf16.Encode([]rune("John Smith\rProject Manager")) {
		data = append(data, byte(u), byte(u>>8))
	}
	data = append(data, 0x00, 0x00, 0xff, 0xff)

	text, err := ExtractTextFromBytes(context.Background(), data, MimeDOC, "old.doc")
	if err != nil {
		t.Fatalf("ExtractTextFromBytes: %v", err)
	}
	if !strings.Contains(text, "John Smith") || !strings.Contains(text, "Project Manager") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestNormalizeMimeType(t *testing.T) {
	docx := buildDocx(t, "x")
	cases := []struct {
		name     string
		mime     string
		fileName string
		data     []byte
		want     string
	}{
		{"declared pdf", "application/pdf; charset=binary", "a.pdf", nil, MimePDF},
		{"octet pdf sniffed", "application/octet-stream", "a.bin", []byte("%PDF-1.7"), MimePDF},
		{"octet docx sniffed", "application/octet-stream", "a", docx, MimeDOCX},
		{"empty by extension", "", "a.DOC", []byte("??"), MimeDOC},
		{"image stays", "image/png", "a.png", nil, "image/png"},
	}
	for _, tc := range cases {
		if got := NormalizeMimeType(tc.mime, tc.fileName, tc.data); got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

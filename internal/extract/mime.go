package extract

import (
	"archive/zip"
	"bytes"
	"path/filepath"
	"strings"
)

const (
	MimePDF  = "application/pdf"
	MimeDOC  = "application/msword"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}

// NormalizeMimeType resolves generic or missing content types from the file
// extension and the payload itself.
func NormalizeMimeType(mimeType string, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	switch clean {
	case MimePDF, MimeDOC, MimeDOCX:
		return clean
	case "application/x-pdf":
		return MimePDF
	case "application/zip", "application/x-zip-compressed":
		if isDocxZip(data) {
			return MimeDOCX
		}
		if strings.EqualFold(filepath.Ext(fileName), ".docx") {
			return MimeDOCX
		}
		return clean
	case "", "application/octet-stream", "binary/octet-stream":
		if sniffed := sniff(data); sniffed != "" {
			return sniffed
		}
		return fromExtension(fileName, clean)
	default:
		return clean
	}
}

// IsSupported reports whether the normalized type is one of pdf, doc or docx.
func IsSupported(mimeType string) bool {
	switch mimeType {
	case MimePDF, MimeDOC, MimeDOCX:
		return true
	default:
		return false
	}
}

func sniff(data []byte) string {
	switch {
	case bytes.HasPrefix(data, []byte("%PDF-")):
		return MimePDF
	case bytes.HasPrefix(data, oleMagic):
		return MimeDOC
	case isDocxZip(data):
		return MimeDOCX
	default:
		return ""
	}
}

func fromExtension(fileName, fallback string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return MimePDF
	case ".doc":
		return MimeDOC
	case ".docx":
		return MimeDOCX
	default:
		return fallback
	}
}

func isDocxZip(data []byte) bool {
	if len(data) < 4 || !bytes.HasPrefix(data, []byte("PK")) {
		return false
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			return true
		}
	}
	return false
}

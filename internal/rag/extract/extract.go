// Package extract turns raw file bytes into plain text. It is pure: input
// is fully buffered and callers bound its size before calling Extract.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/lu4p/cat/docxtxt"
	"github.com/lu4p/cat/odtxt"
	"github.com/lu4p/cat/rtftxt"
	"github.com/surajvast1/Doc-Manager/internal/domain/commonModels"
	"github.com/surajvast1/Doc-Manager/internal/domain/errs"
	"github.com/surajvast1/Doc-Manager/pkg/logger_i"
)

func logger() *logger_i.Logger { return logger_i.NewLogger("extract") }

var (
	errEmptyInput  = errors.New("empty input")
	errInvalidUTF8 = errors.New("extracted text is not valid utf-8")
)

// documentReaders maps each word-processor tag to the MIME type its bytes
// must sniff as and the reader that parses them.
var documentReaders = map[commonModels.FormatTag]struct {
	mime string
	read func([]byte) (string, error)
}{
	commonModels.DOCX: {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", docxtxt.BytesToStr},
	commonModels.ODT:  {"application/vnd.oasis.opendocument.text", odtxt.BytesToStr},
	commonModels.RTF:  {"text/rtf", rtftxt.BytesToStr},
}

// Extract returns the plain text of data interpreted as tag. An unknown
// tag yields errs.ErrUnsupportedFormat; bytes that do not parse as the
// claimed format yield an *errs.ExtractionError.
func Extract(data []byte, tag commonModels.FormatTag, source string) (string, error) {
	var (
		text string
		err  error
	)

	switch tag {
	case commonModels.CSV:
		text, err = extractCSV(data)
	case commonModels.XLSX:
		text, err = extractXLSX(data)
	case commonModels.XLS:
		text, err = extractXLS(data)
	case commonModels.PDF:
		text, err = extractPDF(data)
	case commonModels.PPTX:
		text, err = extractPPTX(data)
	case commonModels.DOCX, commonModels.ODT, commonModels.RTF:
		text, err = extractDocument(data, tag)
	case commonModels.TXT, commonModels.MD:
		text = string(data)
	default:
		return "", errs.ErrUnsupportedFormat
	}

	if err != nil {
		logger().Warn("extraction failed", "format", tag, "source", source, "error", err)
		return "", &errs.ExtractionError{Format: string(tag), File: source, Err: err}
	}
	return strings.TrimSpace(text), nil
}

// Supported reports whether Extract has a reader for tag.
func Supported(tag commonModels.FormatTag) bool {
	return tag != commonModels.UNKNOWN && tag != ""
}

// docx, odt and rtf: paragraphs in document order. The bytes must sniff
// as the claimed format; anything else is malformed, never plain text.
func extractDocument(data []byte, tag commonModels.FormatTag) (string, error) {
	if len(data) == 0 {
		return "", errEmptyInput
	}
	reader, ok := documentReaders[tag]
	if !ok {
		return "", errs.ErrUnsupportedFormat
	}
	if detected := mimetype.Detect(data); !detected.Is(reader.mime) {
		return "", fmt.Errorf("content sniffed as %s, not %s", detected.String(), tag)
	}

	text, err := reader.read(data)
	if err != nil {
		return "", err
	}
	if !utf8.ValidString(text) {
		return "", errInvalidUTF8
	}
	return strings.Join(strings.Fields(text), " "), nil
}

package commonModels

import (
	"path"
	"strings"
	"time"
)

type FormatTag string

const (
	CSV     FormatTag = "csv"
	XLSX    FormatTag = "xlsx"
	XLS     FormatTag = "xls"
	PDF     FormatTag = "pdf"
	PPTX    FormatTag = "pptx"
	DOCX    FormatTag = "docx"
	ODT     FormatTag = "odt"
	RTF     FormatTag = "rtf"
	TXT     FormatTag = "txt"
	MD      FormatTag = "md"
	UNKNOWN FormatTag = "unknown"
)

// FormatFromKey infers the tag from the key's extension. Anything not
// recognised maps to UNKNOWN.
func FormatFromKey(key string) FormatTag {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(key)), ".")
	switch FormatTag(ext) {
	case CSV, XLSX, XLS, PDF, PPTX, DOCX, ODT, RTF, TXT, MD:
		return FormatTag(ext)
	default:
		return UNKNOWN
	}
}

type FileReference struct {
	Bucket string    `json:"bucket"`
	Key    string    `json:"key"`
	Format FormatTag `json:"format"`
}

func NewFileReference(bucket, key string) FileReference {
	return FileReference{Bucket: bucket, Key: key, Format: FormatFromKey(key)}
}

type ExtractedDocument struct {
	Source FileReference
	Text   string
}

type Chunk struct {
	Source   FileReference
	Sequence int
	Text     string
}

type EmbeddingVector struct {
	Chunk  Chunk
	Values []float32
}

// Metadata keys written with every record.
const (
	MetaSource     = "source"
	MetaBucket     = "bucket"
	MetaChunkIndex = "chunk_index"
	MetaFormat     = "format"
)

type IndexRecord struct {
	ID       string            `json:"id"`
	Index    string            `json:"index"`
	Sequence int               `json:"sequence"`
	Text     string            `json:"text"`
	Metadata map[string]string `json:"metadata"`
	Vector   []float32         `json:"-"`
}

func (r IndexRecord) Source() string {
	return r.Metadata[MetaSource]
}

type RetrievalContext struct {
	Text    string   `json:"text"`
	Sources []string `json:"sources"`
	Empty   bool     `json:"empty"`
}

type Stage string

const (
	StageListing       Stage = "Listing"
	StageFetching      Stage = "Fetching"
	StageExtracting    Stage = "Extracting"
	StageChunking      Stage = "Chunking"
	StageEmbedding     Stage = "Embedding"
	StageAccumulating  Stage = "Accumulating"
	StageIndexEnsuring Stage = "IndexEnsuring"
	StageBulkWriting   Stage = "BulkWriting"
	StageDone          Stage = "Done"
)

type SkippedFile struct {
	Key    string `json:"key"`
	Stage  Stage  `json:"stage"`
	Reason string `json:"reason"`
}

type FailedRecord struct {
	Source   string `json:"source"`
	Sequence int    `json:"sequence"`
	Reason   string `json:"reason"`
}

type IngestReport struct {
	RunID          string         `json:"run_id"`
	Bucket         string         `json:"bucket"`
	Folder         string         `json:"folder"`
	FilesSeen      int            `json:"files_seen"`
	FilesSkipped   []SkippedFile  `json:"files_skipped"`
	RecordsWritten int            `json:"records_written"`
	RecordsFailed  []FailedRecord `json:"records_failed"`
	IndexCreated   bool           `json:"index_created"`
	Stage          Stage          `json:"stage"`
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
}

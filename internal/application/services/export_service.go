package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/giapha/core/internal/domain/entities"
	"github.com/giapha/core/internal/domain/family"
	"github.com/giapha/core/internal/infrastructure/logger"
	"github.com/giapha/core/internal/infrastructure/metrics"
	"github.com/giapha/core/internal/treeview"
)

// Export formats.
const (
	FormatJSON   = "json"
	FormatCSV    = "csv"
	FormatPNG    = "png"
	FormatBackup = "backup"
)

// Export is one downloadable file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the tree and the whole blob as downloads.
type ExportService struct {
	site    *SiteService
	opts    treeview.Options
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewExportService creates a new export service
func NewExportService(site *SiteService, opts treeview.Options, logger *logger.Logger, m *metrics.Metrics) *ExportService {
	return &ExportService{
		site:    site,
		opts:    opts,
		logger:  logger.WithComponent("export"),
		metrics: m,
		now:     time.Now,
	}
}

// Filename returns the download name for a format on the current date.
func (s *ExportService) Filename(format string) string {
	date := s.now().UTC().Format(solarDateLayout)
	switch format {
	case FormatPNG:
		return "phado-ho-le-" + date + ".png"
	case FormatBackup:
		return "giapha-backup-" + date + ".json"
	default:
		return "gia-pha-ho-le-" + date + "." + format
	}
}

// Export renders the requested format. A nil view renders PNGs with a fresh
// fully expanded view.
func (s *ExportService) Export(format string, view *treeview.View) (*Export, error) {
	var (
		out *Export
		err error
	)
	switch format {
	case FormatJSON:
		out, err = s.JSON()
	case FormatCSV:
		out = s.CSV()
	case FormatPNG:
		out, err = s.PNG(view)
	case FormatBackup:
		out, err = s.Backup()
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
	s.metrics.Export(format, err)
	if err != nil {
		s.logger.WithError(err).Errorw("Export failed", "format", format)
		return nil, err
	}
	return out, nil
}

// JSON exports the family tree.
func (s *ExportService) JSON() (*Export, error) {
	b, err := json.MarshalIndent(s.site.Tree(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrExportFailed, err)
	}
	return &Export{Filename: s.Filename(FormatJSON), ContentType: "application/json", Body: b}, nil
}

// CSV exports one row per member. The file starts with a UTF-8 byte-order
// mark and every field is quoted.
func (s *ExportService) CSV() *Export {
	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	writeQuotedRow(&buf, family.CSVHeader, false)
	for _, row := range family.Flatten(s.site.Tree()) {
		buf.WriteByte('\n')
		writeQuotedRow(&buf, row.Record(), true)
	}
	return &Export{Filename: s.Filename(FormatCSV), ContentType: "text/csv; charset=utf-8", Body: buf.Bytes()}
}

func writeQuotedRow(buf *bytes.Buffer, fields []string, quote bool) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		if !quote {
			buf.WriteString(f)
			continue
		}
		buf.WriteByte('"')
		buf.WriteString(strings.ReplaceAll(f, `"`, `""`))
		buf.WriteByte('"')
	}
}

// PNG rasterises the tree at scale 1.
func (s *ExportService) PNG(view *treeview.View) (*Export, error) {
	if view == nil {
		view = treeview.NewView(s.opts)
	}
	b, err := view.Snapshot(s.site.Tree())
	if err != nil {
		return nil, err
	}
	return &Export{Filename: s.Filename(FormatPNG), ContentType: "image/png", Body: b}, nil
}

// Backup exports the whole site blob.
func (s *ExportService) Backup() (*Export, error) {
	b, err := json.MarshalIndent(s.site.Data(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entities.ErrExportFailed, err)
	}
	return &Export{Filename: s.Filename(FormatBackup), ContentType: "application/json", Body: b}, nil
}

package export

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"kiosk-sync/core/storage"
	"kiosk-sync/core/utils"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

// Scanner downloads a finished export file and searches it as
// newline-delimited JSON. When a storage client is configured the raw file
// is archived to the bucket before the result is returned.
type Scanner struct {
	http    *http.Client
	storage storage.Client
	bucket  string
	logger  *zap.Logger
}

// NewScanner creates a scanner. store may be nil to disable archiving.
func NewScanner(l *zap.Logger, store storage.Client, bucket string) *Scanner {
	return &Scanner{
		http:    &http.Client{Timeout: 30 * time.Second},
		storage: store,
		bucket:  bucket,
		logger:  l,
	}
}

// FindRecord streams the export file of a finished job and returns the first
// record whose field matches target. field defaults to "id". Lines that fail
// to parse are skipped, not fatal.
func (sc *Scanner) FindRecord(ctx context.Context, result *Result, field, target string) (map[string]any, bool, error) {
	if result == nil || result.State != StateFinished || result.DownloadURL == "" {
		return nil, false, fmt.Errorf("export job %s is not in a downloadable state", jobLabel(result))
	}
	if field == "" {
		field = "id"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, result.DownloadURL, nil)
	if err != nil {
		return nil, false, err
	}
	resp, err := sc.http.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("downloading export: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, false, fmt.Errorf("downloading export: status %d", resp.StatusCode)
	}

	archive := sc.storage != nil && sc.bucket != ""
	var buf bytes.Buffer
	var reader io.Reader = resp.Body
	if archive {
		reader = io.TeeReader(resp.Body, &buf)
	}

	var found map[string]any
	skipped := 0

	scanner := bufio.NewScanner(reader)
	// Export records can carry large embedded payloads per line.
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var rec map[string]any
		if err := json.Unmarshal(line, &rec); err != nil {
			skipped++
			continue
		}
		if found == nil && matches(rec, field, target) {
			found = rec
			if !archive {
				return found, true, nil
			}
			// Keep draining so the archive holds the complete file.
		}
	}
	if err := scanner.Err(); err != nil && found == nil {
		return nil, false, fmt.Errorf("scanning export: %w", err)
	}

	if skipped > 0 {
		sc.logger.Warn("Skipped unparseable export lines",
			zap.String("jobid", result.JobID),
			zap.Int("skipped", skipped))
	}
	if archive {
		sc.archive(ctx, result.JobID, &buf)
	}
	return found, found != nil, nil
}

// archive uploads the raw export file for audit. Archive failures are logged
// only; they never fail the export.
func (sc *Scanner) archive(ctx context.Context, jobID string, data *bytes.Buffer) {
	exists, err := sc.storage.BucketExists(ctx, sc.bucket)
	if err != nil {
		sc.logger.Warn("Export archive skipped", zap.String("bucket", sc.bucket), zap.Error(err))
		return
	}
	if !exists {
		if err := sc.storage.MakeBucket(ctx, sc.bucket, minio.MakeBucketOptions{}); err != nil {
			sc.logger.Warn("Export archive skipped", zap.String("bucket", sc.bucket), zap.Error(err))
			return
		}
	}

	objectName := fmt.Sprintf("exports/%s.ndjson", jobID)
	size := int64(data.Len())
	_, err = sc.storage.PutObject(ctx, sc.bucket, objectName, data, size, minio.PutObjectOptions{
		ContentType: "application/x-ndjson",
	})
	if err != nil {
		sc.logger.Warn("Export archive upload failed", zap.String("object", objectName), zap.Error(err))
		return
	}
	sc.logger.Info("Export archived", zap.String("object", objectName), zap.Int64("bytes", size))
}

// matches reports whether the record's field equals target. Numeric ids
// arrive as JSON numbers while the target comes in as text, so both
// renderings are compared.
func matches(rec map[string]any, field, target string) bool {
	v, ok := rec[field]
	if !ok {
		return false
	}
	if utils.ToString(v) == target {
		return true
	}
	if n, err := strconv.Atoi(target); err == nil && utils.ToInt(v) == n {
		return true
	}
	return false
}

func jobLabel(result *Result) string {
	if result == nil {
		return "(none)"
	}
	return result.JobID
}

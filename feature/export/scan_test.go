package export

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"kiosk-sync/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

const exportBody = `{"id": 1, "externalid": "WI-1001", "status": "open"}
{"id": 2, "externalid": "WI-1002", "status": "closed"}
this line is not json
{"id": 3, "externalid": "WI-1003", "status": "open"}
`

func exportServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(exportBody))
	}))
	t.Cleanup(server.Close)
	return server
}

func finishedResult(url string) *Result {
	return &Result{State: StateFinished, JobID: "42", DownloadURL: url}
}

func TestFindRecord(t *testing.T) {
	t.Run("Finds By Numeric Id", func(t *testing.T) {
		server := exportServer(t)
		scanner := NewScanner(zap.NewNop(), nil, "")

		record, found, err := scanner.FindRecord(context.Background(), finishedResult(server.URL), "", "2")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "WI-1002", record["externalid"])
	})

	t.Run("Finds By Custom Field", func(t *testing.T) {
		server := exportServer(t)
		scanner := NewScanner(zap.NewNop(), nil, "")

		record, found, err := scanner.FindRecord(context.Background(), finishedResult(server.URL), "externalid", "WI-1003")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, float64(3), record["id"])
	})

	t.Run("Not Found Is Not An Error", func(t *testing.T) {
		server := exportServer(t)
		scanner := NewScanner(zap.NewNop(), nil, "")

		record, found, err := scanner.FindRecord(context.Background(), finishedResult(server.URL), "id", "99")
		assert.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, record)
	})

	t.Run("Rejects Unfinished Jobs", func(t *testing.T) {
		scanner := NewScanner(zap.NewNop(), nil, "")

		_, _, err := scanner.FindRecord(context.Background(), &Result{State: StateTimedOut, JobID: "42"}, "id", "1")
		assert.Error(t, err)

		_, _, err = scanner.FindRecord(context.Background(), nil, "id", "1")
		assert.Error(t, err)
	})

	t.Run("Download Failure Is An Error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(server.Close)
		scanner := NewScanner(zap.NewNop(), nil, "")

		_, _, err := scanner.FindRecord(context.Background(), finishedResult(server.URL), "id", "1")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "status 500")
	})

	t.Run("Archives The Full File", func(t *testing.T) {
		server := exportServer(t)

		store := &mocks.Client{}
		store.On("BucketExists", mock.Anything, "kiosk-exports").Return(false, nil)
		store.On("MakeBucket", mock.Anything, "kiosk-exports", mock.Anything).Return(nil)
		store.On("PutObject", mock.Anything, "kiosk-exports", "exports/42.ndjson",
			mock.Anything, int64(len(exportBody)), mock.Anything).
			Return(minio.UploadInfo{}, nil)

		scanner := NewScanner(zap.NewNop(), store, "kiosk-exports")

		// The match is on the first line, but archiving still drains the body.
		record, found, err := scanner.FindRecord(context.Background(), finishedResult(server.URL), "id", "1")
		assert.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "WI-1001", record["externalid"])
		store.AssertExpectations(t)
	})

	t.Run("Archive Failure Does Not Fail The Scan", func(t *testing.T) {
		server := exportServer(t)

		store := &mocks.Client{}
		store.On("BucketExists", mock.Anything, "kiosk-exports").Return(false, assert.AnError)

		scanner := NewScanner(zap.NewNop(), store, "kiosk-exports")

		_, found, err := scanner.FindRecord(context.Background(), finishedResult(server.URL), "id", "3")
		assert.NoError(t, err)
		assert.True(t, found)
		store.AssertExpectations(t)
		store.AssertNotCalled(t, "PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

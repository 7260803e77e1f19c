package compdf

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTempXLSX(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not really a workbook"), 0o644))
	return path
}

func TestClient_OfficeToPDF(t *testing.T) {
	t.Run("full conversion flow", func(t *testing.T) {
		var polls atomic.Int32
		mux := http.NewServeMux()

		mux.HandleFunc("/task", func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer pub-key", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"code":200,"data":{"taskId":"task-1"}}`)
		})
		mux.HandleFunc("/file/upload", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "task-1", r.FormValue("taskId"))
			fmt.Fprint(w, `{"code":200,"data":{"fileKey":"file-1"}}`)
		})
		mux.HandleFunc("/execute/start", func(w http.ResponseWriter, r *http.Request) {
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "file-1", body["fileKey"])
			fmt.Fprint(w, `{"code":200}`)
		})

		var server *httptest.Server
		mux.HandleFunc("/file/fileInfo", func(w http.ResponseWriter, r *http.Request) {
			if polls.Add(1) < 2 {
				fmt.Fprint(w, `{"code":200,"data":{"status":"TaskProcessing"}}`)
				return
			}
			fmt.Fprintf(w, `{"code":200,"data":{"status":"TaskFinish","downloadUrl":"%s/result.pdf"}}`, server.URL)
		})
		mux.HandleFunc("/result.pdf", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("%PDF-1.4 converted"))
		})

		server = httptest.NewServer(mux)
		defer server.Close()

		client := NewClient(Config{
			BaseURL:      server.URL,
			PublicKey:    "pub-key",
			PollInterval: time.Millisecond,
			PollAttempts: 5,
		}, testLogger())

		pdf, err := client.OfficeToPDF(context.Background(), writeTempXLSX(t))
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4 converted"), pdf)
		assert.GreaterOrEqual(t, polls.Load(), int32(2))
	})

	t.Run("task failure surfaces reason", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/task", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"taskId":"task-1"}}`)
		})
		mux.HandleFunc("/file/upload", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"fileKey":"file-1"}}`)
		})
		mux.HandleFunc("/execute/start", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200}`)
		})
		mux.HandleFunc("/file/fileInfo", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"status":"TaskFail","failureReason":"bad sheet"}}`)
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		client := NewClient(Config{
			BaseURL:      server.URL,
			PublicKey:    "pub-key",
			PollInterval: time.Millisecond,
			PollAttempts: 3,
		}, testLogger())

		_, err := client.OfficeToPDF(context.Background(), writeTempXLSX(t))
		assert.ErrorIs(t, err, ErrConversionFailed)
		assert.Contains(t, err.Error(), "bad sheet")
	})

	t.Run("polling attempts exhausted", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/task", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"taskId":"task-1"}}`)
		})
		mux.HandleFunc("/file/upload", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"fileKey":"file-1"}}`)
		})
		mux.HandleFunc("/execute/start", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200}`)
		})
		mux.HandleFunc("/file/fileInfo", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":200,"data":{"status":"TaskProcessing"}}`)
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		client := NewClient(Config{
			BaseURL:      server.URL,
			PublicKey:    "pub-key",
			PollInterval: time.Millisecond,
			PollAttempts: 2,
		}, testLogger())

		_, err := client.OfficeToPDF(context.Background(), writeTempXLSX(t))
		assert.ErrorIs(t, err, ErrConversionTimeout)
	})

	t.Run("api error code rejected", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/task", func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"code":401,"msg":"invalid key"}`)
		})

		server := httptest.NewServer(mux)
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL, PublicKey: "bad"}, testLogger())
		_, err := client.OfficeToPDF(context.Background(), writeTempXLSX(t))
		assert.ErrorContains(t, err, "invalid key")
	})
}

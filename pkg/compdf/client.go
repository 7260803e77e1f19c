// Package compdf is a minimal client for the ComPDF conversion API,
// used to turn the filled spreadsheet into a PDF for image rendering.
package compdf

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// ErrConversionFailed is returned when the remote task ends in a
// failure state.
var ErrConversionFailed = errors.New("compdf conversion failed")

// ErrConversionTimeout is returned when polling exhausts its attempts.
var ErrConversionTimeout = errors.New("timed out waiting for compdf conversion")

// Config carries the API endpoint and credentials. Supplied explicitly
// at construction; the client never reads the environment itself.
type Config struct {
	BaseURL   string
	PublicKey string

	// Polling knobs, defaulted by NewClient when zero.
	PollInterval time.Duration
	PollAttempts int
}

// Client talks to the ComPDF office-to-pdf endpoints: create a task,
// upload the file, start the conversion, poll until done, download.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a ComPDF client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.PollAttempts == 0 {
		cfg.PollAttempts = 30
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: 60 * time.Second},
		logger: logger,
	}
}

type apiEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type taskData struct {
	TaskID string `json:"taskId"`
}

type uploadData struct {
	FileKey string `json:"fileKey"`
}

type fileInfoData struct {
	Status        string `json:"status"`
	DownloadURL   string `json:"downloadUrl"`
	FailureReason string `json:"failureReason"`
}

// OfficeToPDF converts an xlsx file to PDF and returns the PDF bytes.
func (c *Client) OfficeToPDF(ctx context.Context, xlsxPath string) ([]byte, error) {
	taskID, err := c.createTask(ctx)
	if err != nil {
		return nil, fmt.Errorf("creating conversion task: %w", err)
	}
	c.logger.Debug("compdf task created", slog.String("task_id", taskID))

	fileKey, err := c.uploadFile(ctx, taskID, xlsxPath)
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", filepath.Base(xlsxPath), err)
	}

	if err := c.execute(ctx, taskID, fileKey); err != nil {
		return nil, fmt.Errorf("starting conversion: %w", err)
	}

	downloadURL, err := c.waitForResult(ctx, fileKey)
	if err != nil {
		return nil, err
	}

	return c.download(ctx, downloadURL)
}

func (c *Client) createTask(ctx context.Context) (string, error) {
	body, _ := json.Marshal(map[string]string{
		"executeTypeUrl": "office/pdf",
		"language":       "english",
	})
	var data taskData
	if err := c.postJSON(ctx, "/task", body, &data); err != nil {
		return "", err
	}
	if data.TaskID == "" {
		return "", errors.New("task response carried no taskId")
	}
	return data.TaskID, nil
}

func (c *Client) uploadFile(ctx context.Context, taskID, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("writing multipart body: %w", err)
	}
	if err := w.WriteField("taskId", taskID); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/file/upload", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+c.cfg.PublicKey)

	var data uploadData
	if err := c.do(req, &data); err != nil {
		return "", err
	}
	if data.FileKey == "" {
		return "", errors.New("upload response carried no fileKey")
	}
	return data.FileKey, nil
}

func (c *Client) execute(ctx context.Context, taskID, fileKey string) error {
	body, _ := json.Marshal(map[string]string{
		"taskId":  taskID,
		"fileKey": fileKey,
	})
	return c.postJSON(ctx, "/execute/start", body, &struct{}{})
}

// waitForResult polls the file info endpoint until the task finishes,
// fails, or the polling attempts run out.
func (c *Client) waitForResult(ctx context.Context, fileKey string) (string, error) {
	for attempt := 0; attempt < c.cfg.PollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.cfg.PollInterval):
		}

		info, err := c.fileInfo(ctx, fileKey)
		if err != nil {
			c.logger.Warn("compdf status check failed", slog.Any("error", err))
			continue
		}

		switch info.Status {
		case "TaskFinish":
			if info.DownloadURL == "" {
				return "", fmt.Errorf("%w: finished without a download URL", ErrConversionFailed)
			}
			return info.DownloadURL, nil
		case "TaskFail", "TaskError":
			return "", fmt.Errorf("%w: %s", ErrConversionFailed, info.FailureReason)
		}
	}
	return "", ErrConversionTimeout
}

func (c *Client) fileInfo(ctx context.Context, fileKey string) (*fileInfoData, error) {
	u := c.cfg.BaseURL + "/file/fileInfo?fileKey=" + url.QueryEscape(fileKey) + "&language=english"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.PublicKey)

	var data fileInfoData
	if err := c.do(req, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

func (c *Client) download(ctx context.Context, downloadURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading converted PDF: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading converted PDF: status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) postJSON(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.PublicKey)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("compdf %s: status %d: %s", req.URL.Path, resp.StatusCode, payload)
	}

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("decoding compdf response: %w", err)
	}
	if env.Code != 200 {
		return fmt.Errorf("compdf %s: api code %d: %s", req.URL.Path, env.Code, env.Msg)
	}
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("decoding compdf data: %w", err)
		}
	}
	return nil
}

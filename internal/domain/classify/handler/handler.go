package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hotelops/roomboard/internal/domain/classify"
	"github.com/hotelops/roomboard/internal/domain/report"
	"github.com/hotelops/roomboard/pkg/pdftext"
	"github.com/hotelops/roomboard/pkg/storage"
)

// ClassifyHandler serves the upload/edit/download surface of the
// room-status pipeline.
type ClassifyHandler struct {
	classifier *classify.Service
	reports    *report.Service
	extractor  *pdftext.Extractor
	store      storage.Storage
	logger     *slog.Logger
}

func NewClassifyHandler(
	classifier *classify.Service,
	reports *report.Service,
	extractor *pdftext.Extractor,
	store storage.Storage,
	logger *slog.Logger,
) *ClassifyHandler {
	return &ClassifyHandler{
		classifier: classifier,
		reports:    reports,
		extractor:  extractor,
		store:      store,
		logger:     logger,
	}
}

// uploadField ties a multipart form field to the document it carries.
type uploadField struct {
	field string
	name  string
}

var uploadFields = []uploadField{
	{field: "arr_file", name: "ARR"},
	{field: "dep_file", name: "DEP"},
	{field: "gih_file", name: "GIH"},
}

// classifyResponse is the JSON body shared by Upload and ManualEdit.
type classifyResponse struct {
	Result *classify.Result `json:"result"`
	Files  *report.Output   `json:"files,omitempty"`
}

//
// POST /upload
//

func (h *ClassifyHandler) Upload() gin.HandlerFunc {
	return func(c *gin.Context) {
		scheduleDate := c.PostForm("schedule_date")
		if _, err := classify.ParseScheduleDate(scheduleDate); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		tmpDir, err := os.MkdirTemp("", "roomboard-upload-")
		if err != nil {
			h.logger.Error("failed to create upload directory", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process upload"})
			return
		}
		defer os.RemoveAll(tmpDir)

		in := classify.Input{ScheduleDate: scheduleDate}
		var notes []string
		for _, uf := range uploadFields {
			doc, note := h.extractDocument(c, uf, tmpDir)
			if note != "" {
				notes = append(notes, note)
			}
			switch uf.name {
			case "ARR":
				in.ARR = doc
			case "DEP":
				in.DEP = doc
			case "GIH":
				in.GIH = doc
			}
		}

		res, err := h.classifier.Classify(c.Request.Context(), in)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, classify.ErrNoDocuments) {
				status = http.StatusUnprocessableEntity
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		res.Notes = append(notes, res.Notes...)

		c.JSON(http.StatusOK, h.renderReport(c, res))
	}
}

// extractDocument pulls one uploaded PDF's text. Every failure mode
// degrades to an empty document plus a human-readable note so the
// other two documents still get processed.
func (h *ClassifyHandler) extractDocument(c *gin.Context, uf uploadField, tmpDir string) (classify.Document, string) {
	doc := classify.Document{Name: uf.name}

	file, err := c.FormFile(uf.field)
	if err != nil {
		return doc, fmt.Sprintf("%s document: not provided", uf.name)
	}
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return doc, fmt.Sprintf("%s document: %s is not a PDF, skipped", uf.name, file.Filename)
	}

	path := filepath.Join(tmpDir, uf.field+".pdf")
	if err := c.SaveUploadedFile(file, path); err != nil {
		h.logger.Error("failed to save upload", "document", uf.name, "error", err)
		return doc, fmt.Sprintf("%s document: upload failed", uf.name)
	}

	ext, err := h.extractor.ExtractFile(c.Request.Context(), path)
	if err != nil {
		h.logger.Warn("text extraction failed", "document", uf.name, "error", err)
		return doc, fmt.Sprintf("%s document: text extraction failed", uf.name)
	}

	doc.Text = ext.Text
	if ext.Engine == pdftext.EngineOCR {
		doc.Source = classify.SourceOCR
	}
	return doc, ""
}

//
// POST /manual-edit
//

// manualEditRequest carries the result being edited plus the edits.
// The server keeps no per-session state; the client round-trips the
// result it received from Upload.
type manualEditRequest struct {
	Result   classify.Result   `json:"result"`
	Override classify.Override `json:"override"`
}

func (h *ClassifyHandler) ManualEdit() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req manualEditRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if _, err := classify.ParseScheduleDate(string(req.Result.ScheduleDate)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		res, err := req.Override.Apply(&req.Result)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, h.renderReport(c, res))
	}
}

// renderReport projects the result onto the template. A failed
// projection or render is reported in the notes; the classification
// result is returned either way.
func (h *ClassifyHandler) renderReport(c *gin.Context, res *classify.Result) classifyResponse {
	out, err := h.reports.Generate(c.Request.Context(), res)
	if err != nil {
		h.logger.Error("report generation failed", "error", err)
		res.Notes = append(res.Notes, fmt.Sprintf("Report generation failed: %v", err))
		return classifyResponse{Result: res}
	}
	res.Notes = append(res.Notes, out.Notes...)
	out.Notes = nil
	return classifyResponse{Result: res, Files: out}
}

//
// GET /download/:id
//

func (h *ClassifyHandler) Download() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file id"})
			return
		}

		r, info, err := h.store.Open(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
			return
		}
		defer r.Close()

		headers := map[string]string{
			"Content-Disposition": fmt.Sprintf("attachment; filename=%q", info.Name),
		}
		c.DataFromReader(http.StatusOK, info.Size, info.ContentType, r, headers)
	}
}

//
// GET /health
//

func (h *ClassifyHandler) Health() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

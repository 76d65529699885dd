package resumes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-tailor/internal/applications"
	"resume-tailor/internal/shared/server/middleware"
	"resume-tailor/internal/shared/server/respond"
	"resume-tailor/internal/tailoring"
	"resume-tailor/resume/model"
)

// multipart framing on top of the file itself
const formOverhead = 1 << 20

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/upload", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.PUT("/resumes/:id", h.update)
	rg.GET("/resumes/:id/analyze", h.analyze)
	rg.POST("/resumes/:id/analyze", h.analyze)
	rg.POST("/resumes/:id/tailor", h.tailor)
	rg.GET("/resumes/:id/pdf", h.file)
	rg.GET("/resumes/:id/url", h.signedURL)
	rg.GET("/resumes/:id/thumbnail", h.thumbnail)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+formOverhead)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "file_too_large", ErrFileTooLarge.Error(), nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	res, err := h.Svc.Upload(c.Request.Context(), userID, UploadInput{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrFileTooLarge):
			respond.Error(c, http.StatusBadRequest, "file_too_large", err.Error(), nil)
		case errors.Is(err, ErrUnsupportedType):
			respond.Error(c, http.StatusBadRequest, "unsupported_file_type", err.Error(), nil)
		case errors.Is(err, ErrUnreadable):
			respond.Error(c, http.StatusBadRequest, "unreadable_file", ErrUnreadable.Error(), nil)
		case errors.Is(err, ErrQuotaExceeded):
			respond.Error(c, http.StatusForbidden, "quota_exceeded",
				"you have reached your monthly resume limit, upgrade to premium for unlimited resumes", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to upload resume", nil)
		}
		return
	}
	c.Set(middleware.ResumeIDKey, res.ID)
	respond.Created(c, toResponse(res, false))
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}
	respond.OK(c, gin.H{"resumes": toListResponse(items)})
}

func (h *Handler) get(c *gin.Context) {
	id := h.resumeID(c)
	res, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to load resume")
		return
	}
	respond.OK(c, toResponse(res, true))
}

type updateRequest struct {
	Content model.ResumeData `json:"content"`
}

func (h *Handler) update(c *gin.Context) {
	id := h.resumeID(c)
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	res, err := h.Svc.UpdateContent(c.Request.Context(), middleware.UserIDFromContext(c), id, req.Content)
	if err != nil {
		h.fail(c, err, "failed to update resume")
		return
	}
	respond.OK(c, toResponse(res, false))
}

func (h *Handler) analyze(c *gin.Context) {
	id := h.resumeID(c)
	var job *applications.CreateInput
	if c.Request.Method == http.MethodPost && c.Request.ContentLength != 0 {
		var req jobRequest
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		if !req.empty() {
			job = &applications.CreateInput{
				ResumeID:       id,
				JobTitle:       req.JobTitle,
				Company:        req.Company,
				JobDescription: req.JobDescription,
				JobURL:         req.JobURL,
			}
		}
	}
	out, err := h.Svc.Analyze(c.Request.Context(), middleware.UserIDFromContext(c), id, job)
	if err != nil {
		h.fail(c, err, "failed to analyze resume")
		return
	}
	c.Set(middleware.ApplicationIDKey, out.Application.ID)
	respond.OK(c, out)
}

func (h *Handler) tailor(c *gin.Context) {
	id := h.resumeID(c)
	var job tailoring.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	res, err := h.Svc.Tailor(c.Request.Context(), middleware.UserIDFromContext(c), id, job)
	if err != nil {
		h.fail(c, err, ErrTailorFailed.Error())
		return
	}
	respond.OK(c, toResponse(res, false))
}

func (h *Handler) file(c *gin.Context) {
	id := h.resumeID(c)
	res, rc, err := h.Svc.Open(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to open resume file")
		return
	}
	defer rc.Close()
	c.Header("Content-Disposition", "inline; filename="+strconv.Quote(res.FileName))
	c.DataFromReader(http.StatusOK, res.SizeBytes, res.ContentType, rc, nil)
}

func (h *Handler) signedURL(c *gin.Context) {
	id := h.resumeID(c)
	out, err := h.Svc.SignedURL(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to sign resume url")
		return
	}
	respond.OK(c, out)
}

func (h *Handler) thumbnail(c *gin.Context) {
	id := h.resumeID(c)
	rc, err := h.Svc.Thumbnail(c.Request.Context(), middleware.UserIDFromContext(c), id)
	if err != nil {
		h.fail(c, err, "failed to load thumbnail")
		return
	}
	defer rc.Close()
	c.Header("Cache-Control", "private, max-age=300")
	c.DataFromReader(http.StatusOK, -1, "image/png", rc, nil)
}

func (h *Handler) resumeID(c *gin.Context) string {
	id := c.Param("id")
	c.Set(middleware.ResumeIDKey, id)
	return id
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrNoThumbnail):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrNoApplication):
		respond.Error(c, http.StatusNotFound, "no_application", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrTailorFailed):
		respond.Error(c, http.StatusInternalServerError, "tailor_failed", ErrTailorFailed.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}

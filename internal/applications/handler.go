package applications

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/formflow/backend/internal/models"
	"github.com/formflow/backend/pkg/response"
	"github.com/formflow/backend/pkg/storage"
)

// Handler handles candidate application HTTP endpoints.
type Handler struct {
	repo   *Repository
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates an application handler. s3 may be nil, in which case
// resume uploads are rejected as unavailable.
func NewHandler(repo *Repository, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, s3: s3, logger: logger}
}

// Submit handles POST /apply (public, multipart/form-data with a resume file).
func (h *Handler) Submit(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	phone := c.PostForm("phone")
	address := c.PostForm("address")
	degree := c.PostForm("degree")
	if name == "" || email == "" || phone == "" || address == "" || degree == "" {
		response.BadRequest(c, "name, email, phone, address and degree are required")
		return
	}
	applyingFor := c.PostForm("applying_for")
	if applyingFor == "" {
		applyingFor = "General Application"
	}

	file, err := c.FormFile("resume")
	if err != nil {
		response.BadRequest(c, "resume file is required")
		return
	}
	if file.Size > storage.MaxResumeFileSize {
		response.BadRequest(c, "resume exceeds the 5MB size limit")
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !storage.ValidateResumeFileType(contentType, file.Filename) {
		response.BadRequest(c, "resume must be a pdf, doc, docx or txt file")
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "resume storage is not configured")
		return
	}

	app := &models.CandidateApplication{
		ID:          uuid.New(),
		ApplyingFor: applyingFor,
		Name:        name,
		Email:       email,
		Phone:       phone,
		Address:     address,
		Degree:      degree,
		CoverLetter: c.PostForm("cover_letter"),
	}

	src, err := file.Open()
	if err != nil {
		response.Internal(c, "failed to read resume")
		return
	}
	defer src.Close()

	key := storage.ResumeKey(app.ID.String(), file.Filename)
	if contentType == "" {
		contentType = storage.ContentTypeForFilename(file.Filename)
	}
	if _, err := h.s3.Upload(c.Request.Context(), h.s3.ResumesBucket(), key, contentType, src, file.Size); err != nil {
		h.logger.Error("resume upload", zap.Error(err), zap.String("application_id", app.ID.String()))
		response.Internal(c, "failed to store resume")
		return
	}
	app.ResumeKey = key

	if err := h.repo.Create(c.Request.Context(), app); err != nil {
		h.logger.Error("create application", zap.Error(err))
		// best effort: do not leave an orphaned resume behind
		_ = h.s3.DeleteObject(c.Request.Context(), h.s3.ResumesBucket(), key)
		response.Internal(c, "failed to save application")
		return
	}
	response.Created(c, app)
}

// List handles GET /applications (admin only).
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list applications", zap.Error(err))
		response.Internal(c, "failed to list applications")
		return
	}
	response.OK(c, list)
}

// ResumeURL handles GET /applications/:id/resume-url (admin only): returns a
// pre-signed download link for the stored resume.
func (h *Handler) ResumeURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid application id")
		return
	}
	app, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		response.NotFound(c, "application not found")
		return
	}
	if h.s3 == nil {
		response.ServiceUnavailable(c, "resume storage is not configured")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(), h.s3.ResumesBucket(), app.ResumeKey, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign resume url", zap.Error(err), zap.String("application_id", id.String()))
		response.Internal(c, "failed to generate download url")
		return
	}
	response.OK(c, gin.H{"url": url, "expires_in_minutes": int(h.s3.PresignExpire().Minutes())})
}

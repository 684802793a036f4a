package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"gtreg/internal/api"
	"gtreg/internal/images"
	"gtreg/internal/logging"
	"gtreg/internal/registry"
	"gtreg/internal/services"
)

const requestIDHeader = "X-Request-ID"

// requestContext tags each request with a correlation id and logs its outcome.
func (s *Server) requestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(services.WithRequestID(c.Request.Context(), id))

		start := time.Now()
		c.Next()
		logging.WithContext(c.Request.Context(), s.logger).Debug("request handled",
			logging.String("method", c.Request.Method),
			logging.String("path", c.FullPath()),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	health, err := s.store.CheckHealth(c.Request.Context())
	dto := api.FromDatabaseHealth(health, err)
	if dto.Status != "ok" {
		c.JSON(http.StatusServiceUnavailable, dto)
		return
	}
	c.JSON(http.StatusOK, dto)
}

func (s *Server) handleSubmissions(c *gin.Context) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxDocumentBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(c, http.StatusRequestEntityTooLarge, errors.New("submission document too large"))
			return
		}
		writeError(c, http.StatusBadRequest, err)
		return
	}

	batch, err := s.coord.ProcessDocument(c.Request.Context(), body)
	if err != nil {
		writeError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, api.FromBatchResult(batch))
}

func (s *Server) handleDuplicate(c *gin.Context) {
	var req api.DuplicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, errors.New("invalid json"))
		return
	}
	target, err := entityRef(req.EntityType, req.EntityID)
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}

	id, err := s.registrar.RegisterDuplicate(c.Request.Context(), c.Param("id"), target, images.Options{
		IsPrimary: req.IsPrimary,
		Caption:   req.Caption,
		ImageType: strings.TrimSpace(req.ImageType),
		Reason:    strings.TrimSpace(req.Reason),
	})
	if err != nil {
		writeError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusCreated, api.DuplicateResponse{ImageID: id})
}

func (s *Server) handleListImages(c *gin.Context) {
	owner, err := entityRef(c.Query("entity_type"), c.Query("entity_id"))
	if err != nil {
		writeError(c, http.StatusBadRequest, err)
		return
	}
	list, err := s.registrar.List(c.Request.Context(), owner)
	if err != nil {
		writeError(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, api.FromImages(list))
}

func entityRef(kind, id string) (registry.EntityRef, error) {
	kind, id = strings.TrimSpace(kind), strings.TrimSpace(id)
	if kind == "" || id == "" {
		return registry.EntityRef{}, errors.New("entity_type and entity_id are required")
	}
	ref := registry.EntityRef{Kind: registry.EntityKind(kind), ID: id}
	if !ref.Kind.CanOwnImages() {
		return registry.EntityRef{}, errors.New("entity_type must be one of manufacturer, product_line, model, individual_guitar")
	}
	return ref, nil
}

// statusFor maps an engine error to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrSelfReference), errors.Is(err, services.ErrUniquenessViolation):
		return http.StatusConflict
	case errors.Is(err, services.ErrCancelled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, status int, err error) {
	reason := services.ReasonCode(err)
	if status < http.StatusInternalServerError && reason == "storage_error" {
		reason = ""
	}
	c.AbortWithStatusJSON(status, api.ErrorResponse{Error: err.Error(), Reason: reason})
}

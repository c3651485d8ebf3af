package handler

import (
	"errors"
	"path"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"productapprovals/internal/http/middleware"
	"productapprovals/internal/presentation"
	"productapprovals/internal/service"
	"productapprovals/internal/session"
)

// validationResponse is the transcript of one run.
type validationResponse struct {
	RequestID string               `json:"request_id"`
	RunID     string               `json:"run_id"`
	Status    string               `json:"status"`
	Entries   []presentation.Entry `json:"entries"`
	Error     *errorEnvelope       `json:"error,omitempty"`
}

// createValidation runs the pipeline and returns its transcript.
//
//	@Summary		Validate a product
//	@Description	Uploads the product CSV and company license PDF and runs every verification step.
//	@Tags			validations
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			product	formData	file	true	"Product specification CSV"
//	@Param			license	formData	file	true	"Company license PDF"
//	@Success		200		{object}	validationResponse
//	@Failure		400		{object}	errorPayload
//	@Failure		401		{object}	errorPayload
//	@Failure		502		{object}	validationResponse
//	@Router			/api/v1/validations [post]
func (h *Handler) createValidation(c *fiber.Ctx) error {
	in, err := readUploads(c)
	if err != nil {
		return err
	}
	if !complete(in) {
		return writeError(c, fiber.StatusBadRequest, "FILES_REQUIRED", msgFilesRequired)
	}
	if err := checkTypes(in); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_FILE_TYPE", msgFileTypes)
	}

	var tr presentation.Transcript
	run, runErr := h.validator.Validate(c.UserContext(), session.Email(c), in, &tr)

	res := validationResponse{
		RequestID: middleware.RequestIDFrom(c),
		RunID:     run.ID,
		Status:    run.Status,
		Entries:   tr.Entries,
	}
	if runErr != nil {
		res.Error = &errorEnvelope{Code: "VALIDATION_FAILED", Message: presentation.GenericFailure}
		return c.Status(fiber.StatusBadGateway).JSON(res)
	}
	return c.JSON(res)
}

// listRuns returns recorded runs, newest first.
//
//	@Summary	List validation runs
//	@Tags		runs
//	@Produce	json
//	@Param		limit	query		int	false	"Page size (max 100)"	default(10)
//	@Param		offset	query		int	false	"Rows to skip"			default(0)
//	@Success	200		{object}	service.RunListResult
//	@Failure	400		{object}	errorPayload
//	@Router		/api/v1/runs [get]
func (h *Handler) listRuns(c *fiber.Ctx) error {
	limit, err := strconv.Atoi(c.Query("limit", "10"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
	}
	offset, err := strconv.Atoi(c.Query("offset", "0"))
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
	}

	res, err := h.runs.List(c.UserContext(), limit, offset)
	if err != nil {
		requestLogger(h.log, c).Error("list runs", "error", err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	return c.JSON(res)
}

// getRun returns one run with download links for its archived documents.
//
//	@Summary	Get a validation run
//	@Tags		runs
//	@Produce	json
//	@Param		id	path		string	true	"Run ID"
//	@Success	200	{object}	service.RunDetail
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Router		/api/v1/runs/{id} [get]
func (h *Handler) getRun(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	run, err := h.runs.Get(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "run not found")
		}
		requestLogger(h.log, c).Error("get run", "run_id", id, "error", err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}
	return c.JSON(run)
}

// getRunDocument streams an archived document of a run.
//
//	@Summary	Download an archived document
//	@Tags		runs
//	@Produce	octet-stream
//	@Param		id		path	string	true	"Run ID"
//	@Param		kind	path	string	true	"Document kind"	Enums(product, license)
//	@Success	200
//	@Failure	400	{object}	errorPayload
//	@Failure	404	{object}	errorPayload
//	@Router		/api/v1/runs/{id}/documents/{kind} [get]
func (h *Handler) getRunDocument(c *fiber.Ctx) error {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
	}

	rc, info, err := h.runs.OpenDocument(c.UserContext(), id, c.Params("kind"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownDocument):
			return writeError(c, fiber.StatusBadRequest, "INVALID_KIND", "kind must be product or license")
		case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrNotArchived):
			return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "document not found")
		}
		requestLogger(h.log, c).Error("open run document", "run_id", id, "error", err)
		return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
	}

	ct := info.ContentType
	if ct == "" {
		ct = fiber.MIMEOctetStream
	}
	c.Attachment(path.Base(info.Key))
	c.Set(fiber.HeaderContentType, ct)
	// fasthttp closes rc once the body is sent.
	return c.SendStream(rc, int(info.Size))
}

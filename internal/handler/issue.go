package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sumire/issuetracker/internal/domain"
	"github.com/sumire/issuetracker/internal/service"
)

// optionalBool binds a flag that may be absent. It accepts JSON booleans and
// the strings "true"/"false" from JSON or form bodies; an empty string counts
// as absent.
type optionalBool struct {
	set   bool
	value bool
}

func (b *optionalBool) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v := v.(type) {
	case nil:
		*b = optionalBool{}
		return nil
	case bool:
		*b = optionalBool{set: true, value: v}
		return nil
	case string:
		return b.UnmarshalParam(v)
	default:
		return fmt.Errorf("open: unsupported value %s", data)
	}
}

func (b *optionalBool) UnmarshalParam(param string) error {
	if param == "" {
		*b = optionalBool{}
		return nil
	}
	v, err := strconv.ParseBool(param)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	*b = optionalBool{set: true, value: v}
	return nil
}

// optionalString binds a text field that may be absent. A sent empty string
// is kept; JSON null counts as absent.
type optionalString struct {
	set   bool
	value string
}

func (s *optionalString) UnmarshalJSON(data []byte) error {
	var v *string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == nil {
		*s = optionalString{}
		return nil
	}
	*s = optionalString{set: true, value: *v}
	return nil
}

func (s *optionalString) UnmarshalParam(param string) error {
	*s = optionalString{set: true, value: param}
	return nil
}

func (s optionalString) ptr() *string {
	if !s.set {
		return nil
	}
	v := s.value
	return &v
}

// issueRequest is the body shared by POST, PUT and DELETE.
type issueRequest struct {
	ID         string         `json:"_id" form:"_id" query:"_id"`
	Title      optionalString `json:"issue_title" form:"issue_title"`
	Text       optionalString `json:"issue_text" form:"issue_text"`
	CreatedBy  optionalString `json:"created_by" form:"created_by"`
	AssignedTo optionalString `json:"assigned_to" form:"assigned_to"`
	StatusText optionalString `json:"status_text" form:"status_text"`
	Open       optionalBool   `json:"open" form:"open"`
}

// maxFormBody caps form bodies read outside net/http's ParseForm.
const maxFormBody = 10 << 20

// formBodyID reads _id from a form-encoded body that net/http's ParseForm
// leaves unread, as it does for DELETE.
func formBodyID(c echo.Context) (string, error) {
	req := c.Request()
	if req.Body == nil || !strings.HasPrefix(req.Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm) {
		return "", nil
	}
	data, err := io.ReadAll(io.LimitReader(req.Body, maxFormBody))
	if err != nil {
		return "", fmt.Errorf("read form body: %w", err)
	}
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return "", fmt.Errorf("parse form body: %w", err)
	}
	return values.Get("_id"), nil
}

// IssueHandler handles the /api/issues/:project endpoints.
type IssueHandler struct {
	issues *service.IssueService
}

// NewIssueHandler creates a new IssueHandler.
func NewIssueHandler(issues *service.IssueService) *IssueHandler {
	return &IssueHandler{issues: issues}
}

// List returns the project's issues matching the query string.
func (h *IssueHandler) List(c echo.Context) error {
	project := c.Param("project")

	issues, err := h.issues.ListIssues(c.Request().Context(), project, c.QueryParams())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return Fail(c, msgProjectNotFound, "")
		}
		logFailure(c, "list issues", err, "project", project)
		return Fail(c, msgFetchFailed, "")
	}
	return JSON(c, issues)
}

// Create submits a new issue, creating the project on first use.
func (h *IssueHandler) Create(c echo.Context) error {
	project := c.Param("project")

	var req issueRequest
	if err := c.Bind(&req); err != nil {
		logFailure(c, "bind issue", err, "project", project)
		return Fail(c, msgRequiredMissing, "")
	}

	issue, err := h.issues.CreateIssue(c.Request().Context(), project, domain.NewIssue{
		Title:      req.Title.value,
		Text:       req.Text.value,
		CreatedBy:  req.CreatedBy.value,
		AssignedTo: req.AssignedTo.value,
		StatusText: req.StatusText.value,
	})
	if err != nil {
		var validationErr *domain.ValidationError
		if errors.As(err, &validationErr) {
			return Fail(c, msgRequiredMissing, "")
		}
		logFailure(c, "create issue", err, "project", project)
		return Fail(c, msgSaveFailed, "")
	}
	return JSON(c, issue)
}

// Update changes the sent fields of the issue named by _id.
func (h *IssueHandler) Update(c echo.Context) error {
	var req issueRequest
	if err := c.Bind(&req); err != nil {
		logFailure(c, "bind issue update", err, "_id", req.ID)
		return Fail(c, msgUpdateFailed, idOrUnknown(req.ID))
	}

	err := h.issues.UpdateIssue(c.Request().Context(), req.ID, domain.IssueUpdate{
		Title:      req.Title.ptr(),
		Text:       req.Text.ptr(),
		CreatedBy:  req.CreatedBy.ptr(),
		AssignedTo: req.AssignedTo.ptr(),
		StatusText: req.StatusText.ptr(),
		Open:       req.Open.value,
	})
	switch {
	case err == nil:
		return Result(c, resultUpdated, req.ID)
	case errors.Is(err, domain.ErrMissingID):
		return Fail(c, msgMissingID, "")
	case errors.Is(err, domain.ErrNoUpdateFields):
		return Fail(c, msgNoUpdateFields, req.ID)
	default:
		logFailure(c, "update issue", err, "_id", req.ID)
		return Fail(c, msgUpdateFailed, idOrUnknown(req.ID))
	}
}

// Delete removes the issue named by _id.
func (h *IssueHandler) Delete(c echo.Context) error {
	var req issueRequest
	if err := c.Bind(&req); err != nil {
		logFailure(c, "bind issue delete", err, "_id", req.ID)
		return Fail(c, msgDeleteFailed, idOrUnknown(req.ID))
	}
	if req.ID == "" {
		id, err := formBodyID(c)
		if err != nil {
			logFailure(c, "bind issue delete", err)
			return Fail(c, msgDeleteFailed, idOrUnknown(req.ID))
		}
		req.ID = id
	}

	err := h.issues.DeleteIssue(c.Request().Context(), req.ID)
	switch {
	case err == nil:
		return Result(c, resultDeleted, req.ID)
	case errors.Is(err, domain.ErrMissingID):
		return Fail(c, msgMissingID, "")
	default:
		logFailure(c, "delete issue", err, "_id", req.ID)
		return Fail(c, msgDeleteFailed, req.ID)
	}
}

func idOrUnknown(id string) string {
	if id == "" {
		return "unknown"
	}
	return id
}

// logFailure records the underlying error for operators. Lookups that simply
// found nothing are logged at warn, everything else at error.
func logFailure(c echo.Context, op string, err error, attrs ...any) {
	attrs = append(attrs, "error", err, "request_id", requestID(c))
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrInvalidID) || errors.Is(err, domain.ErrInvalidInput) {
		slog.Warn(op+" failed", attrs...)
		return
	}
	slog.Error(op+" failed", attrs...)
}

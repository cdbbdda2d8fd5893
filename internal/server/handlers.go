package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hay-kot/polish/internal/core/edit"
	"github.com/hay-kot/polish/internal/core/highlight"
	"github.com/hay-kot/polish/internal/core/issue"
	"github.com/hay-kot/polish/internal/core/session"
)

// Render formats.
const (
	FormatSegments = "segments"
	FormatHTML     = "html"
)

// CheckRequest is the body of POST /v1/check.
type CheckRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	// Remote also runs the configured provider.
	Remote bool `json:"remote"`
}

// CheckResponse is returned by POST /v1/check.
type CheckResponse struct {
	Language string        `json:"language"`
	Issues   []issue.Issue `json:"issues"`
	Stats    session.Stats `json:"stats"`
	Refined  int           `json:"refined,omitempty"`
}

// ApplyRequest is the body of POST /v1/apply. Without Issues the text is
// checked first. Without Replacement the issue's first suggestion is used.
type ApplyRequest struct {
	Text        string        `json:"text"`
	Language    string        `json:"language"`
	Issues      []issue.Issue `json:"issues"`
	ID          string        `json:"id" binding:"required"`
	Replacement *string       `json:"replacement"`
}

// ApplyResponse is returned by POST /v1/apply. Applied is false when the id
// did not match any issue; the text is then returned unchanged.
type ApplyResponse struct {
	Text    string        `json:"text"`
	Applied bool          `json:"applied"`
	Issues  []issue.Issue `json:"issues"`
}

// ApplyAllRequest is the body of POST /v1/apply-all.
type ApplyAllRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
}

// ApplyAllResponse is returned by POST /v1/apply-all.
type ApplyAllResponse struct {
	Text    string         `json:"text"`
	Applied int            `json:"applied"`
	Skipped []edit.Skipped `json:"skipped,omitempty"`
	Issues  []issue.Issue  `json:"issues"`
}

// RenderRequest is the body of POST /v1/render.
type RenderRequest struct {
	Text     string        `json:"text"`
	Language string        `json:"language"`
	Issues   []issue.Issue `json:"issues"`
	Format   string        `json:"format"`
}

// RenderResponse is returned by POST /v1/render; one field is set per format.
type RenderResponse struct {
	Segments []highlight.Segment `json:"segments,omitempty"`
	HTML     string              `json:"html,omitempty"`
}

func (s *Server) handleCheck() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CheckRequest
		if !bind(c, &req) {
			return
		}

		sess := s.newSession(req.Language)
		sess.SetText(req.Text)

		resp := CheckResponse{Language: sess.Language()}
		if req.Remote {
			n, err := sess.Refine(c.Request.Context())
			if err != nil {
				s.log.Warn().Ctx(c.Request.Context()).Err(err).Msg("remote analysis skipped")
			}
			resp.Refined = n
		}

		resp.Issues = sess.Issues()
		resp.Stats = sess.Stats()
		s.metrics.ObserveIssues(resp.Issues)
		c.JSON(http.StatusOK, resp)
	}
}

func (s *Server) handleApply() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ApplyRequest
		if !bind(c, &req) {
			return
		}

		if req.Issues == nil {
			sess := s.newSession(req.Language)
			sess.SetText(req.Text)
			req.Issues = sess.Issues()
		}

		target, ok := issue.Find(req.Issues, req.ID)
		if !ok {
			c.JSON(http.StatusOK, ApplyResponse{Text: req.Text, Issues: req.Issues})
			return
		}

		replacement := ""
		switch {
		case req.Replacement != nil:
			replacement = *req.Replacement
		case target.HasSuggestions():
			replacement = target.Suggestions[0]
		default:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "issue has no suggestions", "id": req.ID})
			return
		}

		out, applied := edit.Apply(req.Text, req.Issues, req.ID, replacement)
		if !applied {
			c.JSON(http.StatusOK, ApplyResponse{Text: req.Text, Issues: req.Issues})
			return
		}
		s.metrics.ObserveApplied(1)

		c.JSON(http.StatusOK, ApplyResponse{Text: out.Text, Applied: true, Issues: out.Issues})
	}
}

func (s *Server) handleApplyAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ApplyAllRequest
		if !bind(c, &req) {
			return
		}

		sess := s.newSession(req.Language)
		sess.SetText(req.Text)
		res := sess.ApplyAll()
		s.metrics.ObserveApplied(len(res.Applied))

		c.JSON(http.StatusOK, ApplyAllResponse{
			Text:    sess.Text(),
			Applied: len(res.Applied),
			Skipped: res.Skipped,
			Issues:  sess.Issues(),
		})
	}
}

func (s *Server) handleRender() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RenderRequest
		if !bind(c, &req) {
			return
		}

		var segments []highlight.Segment
		if req.Issues != nil {
			segments = highlight.Render(req.Text, req.Issues)
		} else {
			sess := s.newSession(req.Language)
			sess.SetText(req.Text)
			segments = sess.Render()
		}

		switch req.Format {
		case "", FormatSegments:
			c.JSON(http.StatusOK, RenderResponse{Segments: segments})
		case FormatHTML:
			c.JSON(http.StatusOK, RenderResponse{HTML: highlight.HTML(segments)})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "format must be segments or html"})
		}
	}
}

// bind decodes the JSON body into dst, writing the error response on failure.
func bind(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
		return false
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
	return false
}

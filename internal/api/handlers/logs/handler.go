package logs

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/fedotovm/imagestore/internal/api/respond"
)

const (
	defaultLines = 100
	minLines     = 1
	maxLines     = 1000
)

// Handler serves the tail of the process log file.
type Handler struct {
	logFile string
}

// NewHandler creates a Handler reading from the given log file path.
func NewHandler(logFile string) *Handler {
	return &Handler{logFile: logFile}
}

// Response is the payload of GET /logs.
type Response struct {
	TotalLines    int      `json:"total_lines"`
	ReturnedLines int      `json:"returned_lines"`
	Logs          []string `json:"logs"`
}

// Tail handles GET /logs?lines=N, returning the last N lines of the log
// file. N defaults to 100 and is clamped to [1,1000]. A missing log file
// yields an empty result, not an error.
func (h *Handler) Tail(c *ginext.Context) {
	lines := defaultLines
	if raw := c.Query("lines"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respond.Fail(c, http.StatusBadRequest, fmt.Errorf("invalid lines parameter"))
			return
		}
		lines = n
	}

	if lines < minLines {
		lines = minLines
	}
	if lines > maxLines {
		lines = maxLines
	}

	content, err := os.ReadFile(h.logFile)
	if err != nil {
		if os.IsNotExist(err) {
			respond.OK(c, Response{Logs: []string{}})
			return
		}

		zlog.Logger.Err(err).Str("file", h.logFile).Msg("failed to read log file")
		respond.Fail(c, http.StatusInternalServerError, fmt.Errorf("failed to read logs"))
		return
	}

	all := splitLines(string(content))

	tail := all
	if len(all) > lines {
		tail = all[len(all)-lines:]
	}

	respond.OK(c, Response{
		TotalLines:    len(all),
		ReturnedLines: len(tail),
		Logs:          tail,
	})
}

func splitLines(content string) []string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return []string{}
	}

	return strings.Split(trimmed, "\n")
}

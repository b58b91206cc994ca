package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/aretw0/mentor/pkg/domain"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Every effect is written as one JSON object; input lines use the text command syntax.
type JSONHandler struct {
	Reader  *bufio.Reader
	Encoder *json.Encoder
}

// jsonEffect adds the error text that domain.Effect does not serialize.
type jsonEffect struct {
	domain.Effect
	Error string `json:"error,omitempty"`
}

type jsonSystem struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Encoder: json.NewEncoder(w),
	}
}

func (h *JSONHandler) Render(ctx context.Context, effects domain.EffectSet) error {
	for _, e := range effects {
		out := jsonEffect{Effect: e}
		if e.Err != nil {
			out.Error = e.Err.Error()
		}
		if err := h.Encoder.Encode(out); err != nil {
			return err
		}
	}
	return nil
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return SanitizeInput(strings.TrimSpace(text))
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.Encoder.Encode(jsonSystem{Type: "system", Message: msg})
}

package server

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/matzehuels/stackscroll/pkg/config"
	"github.com/matzehuels/stackscroll/pkg/errors"
	"github.com/matzehuels/stackscroll/pkg/stack"
	"github.com/matzehuels/stackscroll/pkg/units"
)

// configRequest overrides parts of the base config. Sizes are in pixels;
// the stack step accepts units ("20dp").
type configRequest struct {
	Viewport    *stack.Size   `json:"viewport,omitempty"`
	Item        *itemRequest  `json:"item,omitempty"`
	Count       *int          `json:"count,omitempty"`
	StackStep   *units.Length `json:"stack_step,omitempty"`
	Density     *float64      `json:"density,omitempty"`
	ZoneDivisor *int          `json:"zone_divisor,omitempty"`
	Palette     string        `json:"palette,omitempty"`
	Colors      []string      `json:"colors,omitempty"`
}

type itemRequest struct {
	Width   int            `json:"width"`
	Height  int            `json:"height"`
	Margins *stack.Margins `json:"margins,omitempty"`
}

// apply returns base with the request's overrides, validated.
func (c configRequest) apply(base config.Config) (config.Config, error) {
	cfg := base
	if c.Density != nil {
		cfg.Viewport.Density = units.Density(*c.Density)
	}
	if c.Viewport != nil {
		cfg.Viewport.Width = units.PxOf(c.Viewport.Width)
		cfg.Viewport.Height = units.PxOf(c.Viewport.Height)
	}
	if c.Item != nil {
		cfg.Item.Width = units.PxOf(c.Item.Width)
		cfg.Item.Height = units.PxOf(c.Item.Height)
		if m := c.Item.Margins; m != nil {
			cfg.Item.Margins = config.MarginConfig{
				Left:   units.PxOf(m.Left),
				Top:    units.PxOf(m.Top),
				Right:  units.PxOf(m.Right),
				Bottom: units.PxOf(m.Bottom),
			}
		}
	}
	if c.Count != nil {
		cfg.Item.Count = *c.Count
	}
	if c.StackStep != nil {
		cfg.Stack.Step = *c.StackStep
	}
	if c.ZoneDivisor != nil {
		cfg.Stack.ZoneDivisor = *c.ZoneDivisor
	}
	if c.Palette != "" {
		cfg.Item.Palette = c.Palette
	}
	if len(c.Colors) > 0 {
		cfg.Item.Colors = c.Colors
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

type scrollRequest struct {
	Delta int `json:"delta"`
}

type simulateRequest struct {
	configRequest
	Deltas    []int   `json:"deltas,omitempty"`
	Sweep     int     `json:"sweep,omitempty"`
	Repeat    int     `json:"repeat,omitempty"`
	Format    string  `json:"format,omitempty"`
	Frame     *int    `json:"frame,omitempty"`
	Filmstrip bool    `json:"filmstrip,omitempty"`
	Zones     bool    `json:"zones,omitempty"`
	Labels    bool    `json:"labels,omitempty"`
	Scale     float64 `json:"scale,omitempty"`
	Check     bool    `json:"check,omitempty"`
}

// decodeJSON reads a JSON body into v. An empty body leaves v unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if stderrors.Is(err, io.EOF) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	writeJSON(w, statusFor(code), errorResponse{Error: errors.UserMessage(err), Code: code})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidConfig, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidColor, errors.ErrCodeIndexOutOfRange:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case errors.ErrCodeLimitExceeded:
		return http.StatusTooManyRequests
	case errors.ErrCodeInconsistentGeometry:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

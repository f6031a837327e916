package embedding

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/openai/openai-go"
)

// StatusCode returns the HTTP status of an API error, or 0 when err did not
// come from an HTTP response.
func StatusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func wrapError(op string, err error) error {
	if code := StatusCode(err); code != 0 {
		return fmt.Errorf("embedding: %s: http %d: %w", op, code, err)
	}
	return fmt.Errorf("embedding: %s: %w", op, err)
}

func toFloat32(in []float64) []float32 {
	out := make([]float32, len(in))
	for i, f := range in {
		out[i] = float32(f)
	}
	return out
}

// cacheKey scopes cached vectors to the model and requested size.
func (c *Client) cacheKey(text string) string {
	return c.cfg.Model + "\x00" + strconv.Itoa(c.cfg.Dimensions) + "\x00" + text
}

func (c *Client) lookup(text string) ([]float32, bool) {
	if c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(c.cacheKey(text))
	if !ok {
		return nil, false
	}
	vec, ok := v.([]float32)
	if !ok {
		return nil, false
	}
	return append([]float32(nil), vec...), true
}

func (c *Client) store(text string, vec []float32) {
	if c.cache == nil {
		return
	}
	stored := append([]float32(nil), vec...)
	c.cache.Set(c.cacheKey(text), stored, int64(len(stored)*4+len(text)))
}

// cacheCounters sizes the admission counters at roughly ten per expected
// entry, assuming 1536-dimension vectors.
func cacheCounters(maxCost int64) int64 {
	n := maxCost / (1536 * 4) * 10
	if n < 1000 {
		n = 1000
	}
	return n
}

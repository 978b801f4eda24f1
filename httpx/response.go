package httpx

import (
	"bytes"
	"net/http"
)

// ResponseBuffer records what a handler writes so the caller can inspect the
// outcome before deciding whether to forward it.
type ResponseBuffer struct {
	status int
	header http.Header
	body   bytes.Buffer
}

func NewResponseBuffer() *ResponseBuffer {
	return &ResponseBuffer{header: http.Header{}}
}

// Status is zero until the handler writes a header or a body.
func (rb *ResponseBuffer) Status() int {
	return rb.status
}

func (rb *ResponseBuffer) Header() http.Header {
	return rb.header
}

func (rb *ResponseBuffer) Body() []byte {
	return rb.body.Bytes()
}

func (rb *ResponseBuffer) Write(p []byte) (int, error) {
	if rb.status == 0 {
		rb.status = http.StatusOK
	}
	return rb.body.Write(p)
}

func (rb *ResponseBuffer) WriteHeader(status int) {
	if rb.status == 0 {
		rb.status = status
	}
}

// Flush replays the recorded response onto w.
func (rb *ResponseBuffer) Flush(w http.ResponseWriter) error {
	dst := w.Header()
	for key, values := range rb.header {
		dst[key] = append(dst[key], values...)
	}
	if rb.status != 0 {
		w.WriteHeader(rb.status)
	}
	if rb.body.Len() == 0 {
		return nil
	}
	_, err := w.Write(rb.body.Bytes())
	return err
}

package pipeline

import (
	"bytes"
	"net/http"
)

// recorder buffers the inner handler's response so the pipeline can
// inspect it before deciding whether to emit it verbatim, replace it
// with a render, or discard it for an error page. Deferring the real
// write is what guarantees a render failure leaves the original
// response byte-identical.
type recorder struct {
	header      http.Header
	status      int
	body        bytes.Buffer
	wroteHeader bool
}

func newRecorder() *recorder {
	return &recorder{header: make(http.Header)}
}

func (rec *recorder) Header() http.Header {
	return rec.header
}

func (rec *recorder) WriteHeader(status int) {
	if rec.wroteHeader {
		return
	}
	rec.status = status
	rec.wroteHeader = true
}

func (rec *recorder) Write(p []byte) (int, error) {
	if !rec.wroteHeader {
		rec.WriteHeader(http.StatusOK)
	}
	return rec.body.Write(p)
}

// Status returns the recorded status, defaulting to 200 like net/http.
func (rec *recorder) Status() int {
	if !rec.wroteHeader {
		return http.StatusOK
	}
	return rec.status
}

// copyTo replays the recorded response verbatim onto the real writer.
func (rec *recorder) copyTo(w http.ResponseWriter) {
	for key, values := range rec.header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.WriteHeader(rec.Status())
	_, _ = w.Write(rec.body.Bytes())
}

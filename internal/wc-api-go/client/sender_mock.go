package client

import (
	"WooWithTypesense/internal/wc-api-go/request"
	"bytes"
	"io"
	"net/http"
)

// SenderMock imitates sending requests and receiving responses
type SenderMock struct {
	Status   int
	Body     string
	Header   http.Header
	Requests []request.Request
}

// Send ...
func (r *SenderMock) Send(req request.Request) (resp *http.Response, err error) {
	r.Requests = append(r.Requests, req)
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	header := r.Header
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		StatusCode: status,
		Header:     header,
		Body:       io.NopCloser(bytes.NewBufferString(r.Body)),
	}, nil
}

package webpush

import (
	"net/http"
	"testing"

	"github.com/daaku/ensure"
	"github.com/google/uuid"
)

func TestNewSuccessReport(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://push.example/x", nil)
	ensure.Nil(t, err)
	resp := &http.Response{StatusCode: http.StatusCreated}
	id := uuid.New()

	report := newSuccessReport(req, resp, id)
	ensure.True(t, report.Success())
	ensure.DeepEqual(t, report.Endpoint(), "https://push.example/x")
	ensure.DeepEqual(t, report.Request(), req)
	ensure.DeepEqual(t, report.Response(), resp)
	ensure.DeepEqual(t, report.Reason(), "")
	ensure.DeepEqual(t, report.CorrelationID(), id)
}

func TestNewFailureReport(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "https://push.example/y", nil)
	ensure.Nil(t, err)
	id := uuid.New()

	report := newFailureReport(req, nil, id, "connection refused")
	ensure.False(t, report.Success())
	ensure.DeepEqual(t, report.Endpoint(), "https://push.example/y")
	ensure.DeepEqual(t, report.Reason(), "connection refused")
	ensure.True(t, report.Response() == nil)
	ensure.DeepEqual(t, report.CorrelationID(), id)
}

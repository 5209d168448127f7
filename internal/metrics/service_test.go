package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestStatus(t *testing.T) {
	if Status(nil) != "success" {
		t.Errorf("Status(nil) = %q", Status(nil))
	}
	if Status(errors.New("x")) != "error" {
		t.Errorf("Status(err) = %q", Status(errors.New("x")))
	}
}

func TestRegisterServiceMetrics_Idempotent(t *testing.T) {
	RegisterServiceMetrics()
	RegisterServiceMetrics()

	before := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("fused", "success"))
	SearchRequestsTotal.WithLabelValues("fused", "success").Inc()
	if got := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("fused", "success")); got != before+1 {
		t.Errorf("search_requests_total = %v, want %v", got, before+1)
	}
}

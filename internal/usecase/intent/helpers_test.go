package intent

import (
	"math"
	"strings"
	"testing"

	"github.com/kailas-cloud/serpintel/internal/domain/serp"
)

type row struct {
	title, url, snippet string
}

func payloadOf(rows ...row) serp.Payload {
	rs := make([]serp.Result, 0, len(rows))
	for i, r := range rows {
		res, err := serp.NewResult(i+1, r.title, r.url, r.snippet)
		if err != nil {
			panic(err)
		}
		rs = append(rs, res)
	}
	return serp.NewPayload(rs, nil)
}

func assertConfidence(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("confidence = %v, want %v", got, want)
	}
}

func assertSignal(t *testing.T, signals []string, want string) {
	t.Helper()
	for _, s := range signals {
		if s == want {
			return
		}
	}
	t.Errorf("signal %q not found in %s", want, strings.Join(signals, " | "))
}

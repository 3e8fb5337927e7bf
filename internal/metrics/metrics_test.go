package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObservers(t *testing.T) {
	m := New()

	m.ObserveRefresh("cms", 12, 3)
	m.ObserveRefresh("snapshot", 10, 2)
	m.ObserveCompare("toggle", true)
	m.ObserveCompare("add", false)
	m.ObserveCompare("add", false)
	m.ObserveRequest("/api/products", 200)
	m.ObserveResolve(true)
	m.ObserveResolve(false)
	m.ObserveResolve(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("cms")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.catalogProducts))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.catalogProjects))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.compareOps.WithLabelValues("add", "false")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolutions.WithLabelValues("not_found")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("/api/products", "200")))
}

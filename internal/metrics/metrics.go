// Package metrics counts catalogue activity with Prometheus collectors.
package metrics

import (
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"library-catalogue/library"
)

// Collector implements library.Recorder on top of Prometheus counters.
type Collector struct {
	booksAdded        prometheus.Counter
	membersRegistered prometheus.Counter
	librariansAdded   prometheus.Counter
	borrows           prometheus.Counter
	returns           prometheus.Counter
	returnMismatches  prometheus.Counter
	failures          *prometheus.CounterVec
}

var _ library.Recorder = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		booksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_books_added_total",
			Help: "Books added to the catalogue.",
		}),
		membersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_members_registered_total",
			Help: "Members registered.",
		}),
		librariansAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_librarians_added_total",
			Help: "Librarians added to the staff list.",
		}),
		borrows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_borrows_total",
			Help: "Successful borrows.",
		}),
		returns: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_returns_total",
			Help: "Successful returns.",
		}),
		returnMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "library_return_mismatches_total",
			Help: "Returns of books the member did not hold.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "library_operation_failures_total",
			Help: "Rejected catalogue operations by operation and error kind.",
		}, []string{"operation", "reason"}),
	}

	reg.MustRegister(
		c.booksAdded,
		c.membersRegistered,
		c.librariansAdded,
		c.borrows,
		c.returns,
		c.returnMismatches,
		c.failures,
	)

	return c
}

func (c *Collector) RecordBookAdded()        { c.booksAdded.Inc() }
func (c *Collector) RecordMemberRegistered() { c.membersRegistered.Inc() }
func (c *Collector) RecordLibrarianAdded()   { c.librariansAdded.Inc() }
func (c *Collector) RecordBorrow()           { c.borrows.Inc() }

// RecordReturn counts a completed return, or a mismatch when returned is false.
func (c *Collector) RecordReturn(returned bool) {
	if returned {
		c.returns.Inc()
		return
	}
	c.returnMismatches.Inc()
}

// RecordFailure labels the failure with library.ErrorKind.
func (c *Collector) RecordFailure(op string, err error) {
	c.failures.WithLabelValues(op, library.ErrorKind(err)).Inc()
}

// Sample is one gathered counter value.
type Sample struct {
	Name   string  `json:"name"`
	Labels string  `json:"labels,omitempty"`
	Value  float64 `json:"value"`
}

// Snapshot gathers every counter from g, ordered by name then labels.
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	samples := []Sample{}
	for _, mf := range families {
		if mf.GetType() != dto.MetricType_COUNTER {
			continue
		}
		for _, m := range mf.GetMetric() {
			samples = append(samples, Sample{
				Name:   mf.GetName(),
				Labels: formatLabels(m.GetLabel()),
				Value:  m.GetCounter().GetValue(),
			})
		}
	}
	sort.SliceStable(samples, func(i, j int) bool {
		if samples[i].Name != samples[j].Name {
			return samples[i].Name < samples[j].Name
		}
		return samples[i].Labels < samples[j].Labels
	})
	return samples, nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}

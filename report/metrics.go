package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// MetricsTable writes every series gathered from g as a Markdown table
// row. Histograms show their sample count and sum.
func MetricsTable(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("| Metric | Labels | Type | Value | Description |\n")
	sb.WriteString("|--------|--------|------|-------|-------------|\n")
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
				mf.GetName(), labels(m), strings.ToLower(mf.GetType().String()), value(mf.GetType(), m), mf.GetHelp())
		}
	}

	_, err = io.WriteString(w, sb.String())
	return err
}

func labels(m *dto.Metric) string {
	pairs := make([]string, 0, len(m.GetLabel()))
	for _, lp := range m.GetLabel() {
		pairs = append(pairs, lp.GetName()+"="+lp.GetValue())
	}
	return strings.Join(pairs, ",")
}

func value(t dto.MetricType, m *dto.Metric) string {
	switch t {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%.0f", m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%.0f", m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		h := m.GetHistogram()
		return fmt.Sprintf("count=%d sum=%.0f", h.GetSampleCount(), h.GetSampleSum())
	case dto.MetricType_UNTYPED:
		return fmt.Sprintf("%.2f", m.GetUntyped().GetValue())
	}
	return "-"
}

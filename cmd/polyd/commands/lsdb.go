// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package commands

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/common/expfmt"
	dto "github.com/prometheus/client_model/go"
	"github.com/spf13/cobra"
)

var lsdbMetricsAddr string

var showLSDBCmd = &cobra.Command{
	Use:   "lsdb",
	Short: "Summarize each protocol instance's link-state database",
	Long: `LSDB state is explicitly non-durable (§6) and lives only in a
running daemon's memory, so this command has no local-file fallback like
"show journal" does: it scrapes the running daemon's Prometheus metrics
endpoint, the same /metrics surface "polyd run" exposes, and renders the
per-instance lsdb_lsa_count/lsdb_checksum_sum/adjacency_up gauges and the
spf_runs_total counter as a table. The northbound control transport itself stays out of scope; this
reuses the metrics endpoint rather than adding a second one.`,
	RunE: runShowLSDB,
}

func init() {
	showLSDBCmd.Flags().StringVar(&lsdbMetricsAddr, "metrics-addr", "127.0.0.1:9090", "address of a running polyd's metrics endpoint")
}

var lsdbMetricNames = []string{
	"lsdb_lsa_count",
	"lsdb_checksum_sum",
	"spf_runs_total",
	"adjacency_up",
}

func runShowLSDB(cmd *cobra.Command, args []string) error {
	resp, err := http.Get(fmt.Sprintf("http://%s/metrics", lsdbMetricsAddr))
	if err != nil {
		return fmt.Errorf("connecting to %s: %w (is \"polyd run\" running?)", lsdbMetricsAddr, err)
	}
	defer resp.Body.Close()

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return fmt.Errorf("parsing metrics response: %w", err)
	}

	rows := make([][]string, 0)
	for name, family := range families {
		if !matchesAny(name, lsdbMetricNames) {
			continue
		}
		for _, m := range family.GetMetric() {
			rows = append(rows, []string{name, labelString(m), valueString(family.GetType(), m)})
		}
	}
	printTable(os.Stdout, []string{"METRIC", "LABELS", "VALUE"}, rows)
	return nil
}

func matchesAny(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.Contains(name, s) {
			return true
		}
	}
	return false
}

func labelString(m *dto.Metric) string {
	var parts []string
	for _, l := range m.GetLabel() {
		parts = append(parts, fmt.Sprintf("%s=%s", l.GetName(), l.GetValue()))
	}
	return strings.Join(parts, ",")
}

func valueString(typ dto.MetricType, m *dto.Metric) string {
	switch typ {
	case dto.MetricType_COUNTER:
		return fmt.Sprintf("%g", m.GetCounter().GetValue())
	case dto.MetricType_GAUGE:
		return fmt.Sprintf("%g", m.GetGauge().GetValue())
	case dto.MetricType_HISTOGRAM:
		return fmt.Sprintf("count=%d sum=%g", m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
	default:
		return "-"
	}
}

package intake

import (
	"fmt"
	"sort"
	"strings"

	"github.com/clusterscope/evidence-core/internal/models"
)

// BuildInstruction renders the textual investigation instruction forwarded
// alongside an accepted alert. Labels and annotations are emitted in sorted
// key order so identical alerts always produce identical instructions.
func BuildInstruction(event *models.AlertEvent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "ALERT RECEIVED - INVESTIGATE AND ANALYZE\n\n")
	fmt.Fprintf(&b, "Alert Name: %s\n", event.Name())
	fmt.Fprintf(&b, "Severity: %s\n", labelOr(event.Labels, "severity", "unknown"))
	fmt.Fprintf(&b, "Status: %s\n", event.Status)
	fmt.Fprintf(&b, "Started At: %s\n", event.StartsAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Fprintf(&b, "Fingerprint: %s\n", event.Fingerprint)

	b.WriteString("\nALERT LABELS:\n")
	writeSorted(&b, event.Labels)

	b.WriteString("\nALERT ANNOTATIONS:\n")
	writeSorted(&b, event.Annotations)

	if event.GeneratorURL != "" {
		fmt.Fprintf(&b, "\nGENERATOR URL:\n%s\n", event.GeneratorURL)
	}

	fmt.Fprintf(&b, "\nCONTEXT:\n")
	fmt.Fprintf(&b, "- Namespace: %s\n", labelOr(event.Labels, "namespace", "unknown"))
	fmt.Fprintf(&b, "- Pod: %s\n", labelOr(event.Labels, "pod", "unknown"))

	b.WriteString(`
INSTRUCTIONS:

1. Review the knowledge base for cluster context and similar past issues.
2. Pull the release history for the affected namespace and diff the current
   revision against the previous one for configuration drift.
3. Fetch recent logs for the affected pods and extract error evidence.
4. Correlate the findings and report the likely root cause with specific
   follow-up commands and mitigation steps.
`)

	return b.String()
}

func writeSorted(b *strings.Builder, kv map[string]string) {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, "  %s: %s\n", k, kv[k])
	}
}

func labelOr(labels map[string]string, key, fallback string) string {
	if v, ok := labels[key]; ok && v != "" {
		return v
	}
	return fallback
}

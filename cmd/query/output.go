package query

import (
	"encoding/json"
	"fmt"
	"io"
)

func writeResults(w io.Writer, format string, results []Result) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	for _, res := range results {
		if res.Error != "" {
			if _, err := fmt.Fprintf(w, "# %s: error: %s\n", res.Name, res.Error); err != nil {
				return err
			}
			continue
		}

		if _, err := fmt.Fprintf(w, "# %s: %d path(s)\n", res.Name, len(res.Paths)); err != nil {
			return err
		}
		for _, p := range res.Paths {
			if _, err := fmt.Fprintf(w, "%d\t%s\n", p.Length, p); err != nil {
				return err
			}
		}
	}

	return nil
}

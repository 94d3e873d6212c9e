package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/NaserJamal/simple-ocr/internal/layout"
)

// ToText renders extracted pages as plain text with page banners and a
// section-type label per region. Failed regions are noted inline so the
// dump accounts for every detected region.
func ToText(pages []layout.PageResult) string {
	var b strings.Builder
	for i, page := range pages {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "========== PAGE %d ==========\n", page.Page+1)
		if page.Error != "" {
			fmt.Fprintf(&b, "\n[page failed: %s]\n", page.Error)
			continue
		}
		if len(page.Regions) == 0 {
			b.WriteString("\n[no regions detected]\n")
			continue
		}
		for _, region := range page.Regions {
			fmt.Fprintf(&b, "\n[%s]\n", strings.ToUpper(region.Type))
			if region.Error != "" {
				fmt.Fprintf(&b, "(extraction failed: %s)\n", region.Error)
				continue
			}
			b.WriteString(region.Text)
			b.WriteString("\n")
		}
	}
	return b.String()
}

// ToJSON renders a run result as indented JSON.
func ToJSON(result *RunResult) ([]byte, error) {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding result: %w", err)
	}
	return data, nil
}

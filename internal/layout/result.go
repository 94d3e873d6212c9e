package layout

// PageResult aggregates the regions detected and extracted for one page.
// Error is set when the whole page failed (for example unparseable
// detection output); individual region failures live on the regions.
type PageResult struct {
	Page    int      `json:"page"`
	Regions []Region `json:"regions"`
	Error   string   `json:"error,omitempty"`
}

// Summary holds run-level statistics over all pages.
type Summary struct {
	TotalRegions    int            `json:"total_regions"`
	SuccessfulPages int            `json:"successful_pages"`
	FailedPages     int            `json:"failed_pages"`
	RegionTypes     map[string]int `json:"region_types"`
	TotalCharacters int            `json:"total_characters_extracted"`
}

// Summarize computes run statistics from per-page results.
func Summarize(pages []PageResult) Summary {
	s := Summary{RegionTypes: make(map[string]int)}
	for _, p := range pages {
		if p.Error != "" {
			s.FailedPages++
		} else {
			s.SuccessfulPages++
		}
		for _, r := range p.Regions {
			s.TotalRegions++
			s.RegionTypes[r.Type]++
			s.TotalCharacters += len(r.Text)
		}
	}
	return s
}

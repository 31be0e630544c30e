package overlap

// Stats holds per-visit and per-detector distributions over the overlap table.
type Stats struct {
	// Rows is the number of records tallied.
	Rows int `json:"rows"`

	// DetectorsPerVisit has one entry per visit: the detectors it touched.
	DetectorsPerVisit []int `json:"detectorsPerVisit"`

	// EntriesPerDetector has one entry per (visit, detector) run: its row count,
	// i.e. the number of patches that sensor overlaps.
	EntriesPerDetector []int `json:"entriesPerDetector"`

	// EntriesPerVisit has one entry per visit: its row count.
	EntriesPerVisit []int `json:"entriesPerVisit"`
}

// Tally groups records on changes of visit and detector in a single pass.
// Records must already be ordered by (visit, detector); unsorted input splits
// groups without any error.
func Tally(records []Record) Stats {
	st := Stats{
		Rows:               len(records),
		DetectorsPerVisit:  []int{},
		EntriesPerDetector: []int{},
		EntriesPerVisit:    []int{},
	}
	if len(records) == 0 {
		return st
	}

	visit, det := records[0].Visit, records[0].Detector
	nDet, nDetEntries, nVisitEntries := 1, 0, 0

	for _, rec := range records {
		switch {
		case rec.Visit != visit:
			st.EntriesPerDetector = append(st.EntriesPerDetector, nDetEntries)
			st.DetectorsPerVisit = append(st.DetectorsPerVisit, nDet)
			st.EntriesPerVisit = append(st.EntriesPerVisit, nVisitEntries)
			visit, det = rec.Visit, rec.Detector
			nDet, nDetEntries, nVisitEntries = 1, 0, 0
		case rec.Detector != det:
			st.EntriesPerDetector = append(st.EntriesPerDetector, nDetEntries)
			det = rec.Detector
			nDet++
			nDetEntries = 0
		}
		nDetEntries++
		nVisitEntries++
	}

	st.EntriesPerDetector = append(st.EntriesPerDetector, nDetEntries)
	st.DetectorsPerVisit = append(st.DetectorsPerVisit, nDet)
	st.EntriesPerVisit = append(st.EntriesPerVisit, nVisitEntries)
	return st
}

// SensorsPerVisit returns the number of sensors each resolved visit touched,
// in visit order.
func SensorsPerVisit(res *Result) []int {
	if res == nil {
		return []int{}
	}
	out := make([]int, 0, len(res.Visits))
	for _, v := range res.Visits {
		out = append(out, len(res.Sensors[v]))
	}
	return out
}

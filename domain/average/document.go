package average

// Document is the published average.json shape
type Document struct {
	Count            int                `json:"count"`
	ObservationCount int                `json:"observationCount"`
	Name             string             `json:"name,omitempty"`
	Title            string             `json:"title"`
	Denomination     string             `json:"denomination"`
	AprioriPct       int                `json:"aprioriPct"`
	PosteriorPct     int                `json:"posteriorPct"`
	Evidence         []EvidenceDocument `json:"evidence"`
}

// EvidenceDocument is one published evidence row
type EvidenceDocument struct {
	ID                int    `json:"id"`
	Head              string `json:"head"`
	Count             int    `json:"count"`
	CountDisregard    int    `json:"countDisregard"`
	CountDisregardPct int    `json:"countDisregardPct"`
	PehPct            int    `json:"pehPct"`
	PenhPct           int    `json:"penhPct"`
	Weight            int    `json:"weight"`
}

// ToDocument rounds n for publication. Rounding happens here and nowhere else.
func ToDocument(n NormalizedAverage) Document {
	doc := Document{
		Count:            n.Count,
		ObservationCount: n.ObservationCount,
		Name:             n.Name,
		Title:            n.Title,
		Denomination:     n.Denomination,
		AprioriPct:       RoundHalfUp(n.AprioriPct),
		PosteriorPct:     RoundHalfUp(n.PosteriorPct),
		Evidence:         make([]EvidenceDocument, 0, len(n.Evidence)),
	}
	for _, e := range n.Evidence {
		doc.Evidence = append(doc.Evidence, EvidenceDocument{
			ID:                e.ID,
			Head:              e.Head,
			Count:             e.Count,
			CountDisregard:    e.CountDisregard,
			CountDisregardPct: disregardPct(e.CountDisregard, e.Count),
			PehPct:            RoundHalfUp(e.PehPct),
			PenhPct:           RoundHalfUp(e.PenhPct),
			Weight:            RoundHalfUp(e.weightInternal),
		})
	}
	return doc
}

func disregardPct(disregard, count int) int {
	if count == 0 {
		return 0
	}
	return RoundHalfUp(float64(disregard) / float64(count) * 100)
}

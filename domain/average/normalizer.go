package average

// Normalize reshapes avg so its evidence holds exactly the schema ids, in schema order.
// Ids the average never saw become disregarded placeholders; ids outside the schema are
// dropped. Schema heads replace observed heads. With an empty schema the average is
// passed through in first-seen order and the result reports Normalized == false.
func Normalize(avg RunningAverage, schema EvidenceSchema) NormalizedAverage {
	out := NormalizedAverage{
		Labels:           avg.Labels,
		Count:            avg.Count,
		ObservationCount: avg.ObservationCount,
		AprioriPct:       avg.AprioriPct,
		PosteriorPct:     avg.PosteriorPct,
	}

	if len(schema) == 0 {
		out.Evidence = avg.Evidence.All()
		return out
	}

	out.Normalized = true
	out.Evidence = make([]EvidenceAverage, 0, len(schema))
	placed := make(map[int]struct{}, len(schema))
	for _, entry := range schema {
		if _, dup := placed[entry.ID]; dup {
			continue
		}
		placed[entry.ID] = struct{}{}

		if e, ok := avg.Evidence.Get(entry.ID); ok {
			if entry.Head != "" {
				e.Head = entry.Head
			}
			out.Evidence = append(out.Evidence, e)
			continue
		}
		out.Evidence = append(out.Evidence, disregarded(entry, avg.Count))
	}
	return out
}

func disregarded(entry SchemaEntry, count int) EvidenceAverage {
	return EvidenceAverage{
		ID:             entry.ID,
		Head:           entry.Head,
		Count:          count,
		CountDisregard: count,
	}
}

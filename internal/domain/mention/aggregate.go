package mention

// Aggregate reduces a mention list to a count and the arithmetic mean of the
// sentiment scores. An empty list yields exactly (0, 0.0) — downstream
// consumers and stored history rely on 0.0 for "no mentions", and a genuine
// zero average is distinguishable only via the count.
func Aggregate(mentions []Mention) (int, float64) {
	if len(mentions) == 0 {
		return 0, 0.0
	}

	total := 0.0
	for _, m := range mentions {
		total += m.SentimentScore
	}

	return len(mentions), total / float64(len(mentions))
}

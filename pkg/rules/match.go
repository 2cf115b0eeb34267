package rules

// Match scans the table in order and returns the index of the first trigger
// rule with a variant equal to the normalized user text. First match wins;
// there is no scoring and no partial matching. Empty text matches nothing.
func Match(table []Rule, text string) (int, bool) {
	want := normalize(text)
	if want == "" {
		return 0, false
	}

	for i, rule := range table {
		if !rule.IsTrigger() {
			continue
		}
		for _, variant := range rule.Variants() {
			if variant == want {
				return i, true
			}
		}
	}

	return 0, false
}

package search

// hasUpperASCII reports whether s contains an uppercase ASCII letter.
func hasUpperASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			return true
		}
	}
	return false
}

// ResolveSmartCase implements the smart-case rule: when cfg.SmartCase is
// set, IgnoreCase is forced to true iff cfg.Query has no uppercase
// character, and left untouched otherwise. It must run once, before
// parsing — every QueryData built during parsing inherits the IgnoreCase
// this produces.
func ResolveSmartCase(cfg Config) Config {
	if cfg.SmartCase {
		cfg.IgnoreCase = !hasUpperASCII(cfg.Query)
	}
	return cfg
}

package prompt

// Resolution order for every configurable value: an explicit CLI flag wins,
// then an interactive prompt, then the hard default. Prompt failures
// propagate; they are never silently replaced by the default.

// String resolves a string value.
func String(flagValue string, interactive bool, ask func() (string, error), defaultValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if interactive {
		return ask()
	}
	return defaultValue, nil
}

// Bool resolves a boolean value. A present flag is truthy iff it is
// exactly "true" or "1".
func Bool(flagValue string, interactive bool, ask func() (bool, error), defaultValue bool) (bool, error) {
	if flagValue != "" {
		return flagValue == "true" || flagValue == "1", nil
	}
	if interactive {
		return ask()
	}
	return defaultValue, nil
}

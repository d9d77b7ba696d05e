package charts

// Params carries the per-kind plot options, keyed by recognized option names
// (x_column, bins, line_color, ...). Unrecognized keys are ignored by every
// renderer.
type Params map[string]any

// String returns the string value for key, or def when absent or not a string.
func (p Params) String(key, def string) string {
	if v, ok := p[key]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return def
}

// Int returns the integer value for key, accepting int and float64, or def.
func (p Params) Int(key string, def int) int {
	switch v := p[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// Float returns the float value for key, accepting float64 and int, or def.
func (p Params) Float(key string, def float64) float64 {
	switch v := p[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	}
	return def
}

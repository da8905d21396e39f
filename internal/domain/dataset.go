package domain

// Dataset is a top-level collection of indexed documents with free-form metadata.
type Dataset struct {
	ID   string
	Meta map[string]any
}

// Title returns the "title" metadata value, falling back to the id.
func (d Dataset) Title() string {
	if t, ok := d.Meta["title"].(string); ok && t != "" {
		return t
	}
	return d.ID
}

package provider

// Part is one ordered prompt fragment.
type Part struct {
	Text string `json:"text"`
}

// Prompt is either Text or Parts.
type Prompt interface {
	prompt()
}

// Text is a prompt given as a single string.
type Text string

// Parts is a prompt given as ordered fragments.
type Parts []Part

func (Text) prompt()  {}
func (Parts) prompt() {}

// Fragments normalizes p into ordered fragments. A Text prompt becomes a
// single fragment; Parts pass through unchanged. A nil prompt is rejected
// with ErrInvalidPrompt.
func Fragments(p Prompt) ([]Part, error) {
	switch v := p.(type) {
	case Text:
		return []Part{{Text: string(v)}}, nil
	case Parts:
		return []Part(v), nil
	default:
		return nil, ErrInvalidPrompt
	}
}

// Texts returns the fragment texts of p in order.
func Texts(p Prompt) ([]string, error) {
	parts, err := Fragments(p)
	if err != nil {
		return nil, err
	}

	texts := make([]string, len(parts))
	for i, part := range parts {
		texts[i] = part.Text
	}

	return texts, nil
}

package deck

import "strings"

const slideMarker = "SLIDE"

var titleMarkup = strings.NewReplacer("**", "", "<u>", "", "</u>", "")

// ParseSlides splits generated text into slide records at "SLIDE n: Title" lines.
// Text before the first marker is dropped. When the text has no marker at all the
// result is a single untitled slide holding every non-empty line; see IsDegenerate.
func ParseSlides(raw string) []RawSlide {
	var (
		slides   []RawSlide
		current  *RawSlide
		preamble []string
	)

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, slideMarker) {
			if current != nil {
				slides = append(slides, *current)
			}
			current = &RawSlide{Title: markerTitle(line), Content: []string{}}
			continue
		}

		if current == nil {
			preamble = append(preamble, line)
			continue
		}
		current.Content = append(current.Content, line)
	}

	if current != nil {
		return append(slides, *current)
	}
	if preamble == nil {
		preamble = []string{}
	}
	return []RawSlide{{Content: preamble}}
}

// IsDegenerate reports whether raw contains no slide marker, in which case
// ParseSlides falls back to a single untitled slide.
func IsDegenerate(raw string) bool {
	for _, line := range strings.Split(raw, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), slideMarker) {
			return false
		}
	}
	return true
}

func markerTitle(line string) string {
	_, title, found := strings.Cut(line, ":")
	if !found {
		return ""
	}
	return CleanTitle(title)
}

// CleanTitle strips bold and underline markup left by the model.
func CleanTitle(title string) string {
	return strings.TrimSpace(titleMarkup.Replace(title))
}

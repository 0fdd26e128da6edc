package deck

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitIntoBullets normalizes raw content lines into bullets. A line that already
// starts with a bullet marker yields one bullet; any other line yields one bullet
// per sentence.
func SplitIntoBullets(lines []string) []Bullet {
	var bullets []Bullet
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, BulletGlyph) || strings.HasPrefix(line, "-") {
			rest := strings.TrimLeftFunc(line, isMarkerRune)
			if rest != "" {
				bullets = append(bullets, newBullet(rest))
			}
			continue
		}

		for _, sentence := range splitSentences(line) {
			bullets = append(bullets, newBullet(sentence))
		}
	}
	return bullets
}

func newBullet(text string) Bullet {
	return Bullet(BulletGlyph + " " + text)
}

func isMarkerRune(r rune) bool {
	return r == '-' || r == '•' || unicode.IsSpace(r)
}

// splitSentences cuts after '.', '!' or '?' when followed by whitespace.
func splitSentences(line string) []string {
	var out []string
	start := 0
	for i := 0; i < len(line); {
		r, size := utf8.DecodeRuneInString(line[i:])
		i += size
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		next, _ := utf8.DecodeRuneInString(line[i:])
		if i >= len(line) || !unicode.IsSpace(next) {
			continue
		}
		if s := strings.TrimSpace(line[start:i]); s != "" {
			out = append(out, s)
		}
		for i < len(line) {
			r, size := utf8.DecodeRuneInString(line[i:])
			if !unicode.IsSpace(r) {
				break
			}
			i += size
		}
		start = i
	}
	if s := strings.TrimSpace(line[start:]); s != "" {
		out = append(out, s)
	}
	return out
}

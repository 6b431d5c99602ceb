package generation

import (
	"regexp"
	"strings"
)

var (
	fencePattern    = regexp.MustCompile("(?s)```([A-Za-z0-9_+-]*)[ \\t]*\\r?\\n(.*?)```")
	documentPattern = regexp.MustCompile(`(?is)<!doctype\s+html.*</html\s*>|<html[\s>].*</html\s*>`)
	fragmentPattern = regexp.MustCompile(`(?s)<[A-Za-z!][^<>]*>.*</?[A-Za-z][^<>]*>`)
	tagStartPattern = regexp.MustCompile(`^<[A-Za-z!/]`)
)

// ExtractHTML returns the HTML document or fragment contained in a raw model
// response, discarding any narration or markdown fencing around it.
//
// Candidates are tried in order: a fence labelled html, any other fence whose
// body starts with a tag, a <!DOCTYPE html> or <html> document, and finally
// the span from the first tag to the last tag, which needs at least two tags
// so that narration such as "3 < 4 and 5 > 2" is never taken for markup.
// ErrNoHTML is returned when none matches.
func ExtractHTML(raw string) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return "", ErrNoHTML
	}

	var looseFence string
	for _, m := range fencePattern.FindAllStringSubmatch(raw, -1) {
		body := strings.TrimSpace(m[2])
		if body == "" {
			continue
		}
		if strings.EqualFold(m[1], "html") {
			return body, nil
		}
		if looseFence == "" && tagStartPattern.MatchString(body) {
			looseFence = body
		}
	}
	if looseFence != "" {
		return looseFence, nil
	}

	if doc := documentPattern.FindString(raw); doc != "" {
		return doc, nil
	}

	if frag := fragmentPattern.FindString(raw); frag != "" {
		return frag, nil
	}

	return "", ErrNoHTML
}

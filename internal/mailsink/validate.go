package mailsink

import "regexp"

// addressRegex is a permissive syntactic check, not RFC 5322. The local part
// is word, hyphen and dot characters with no leading, trailing or repeated
// dot. The domain is a word segment followed by at least one dot label.
var addressRegex = regexp.MustCompile(`^[\w-]+(?:\.[\w-]+)*@\w+(?:[.-]\w+)*\.\w+$`)

// Validate reports whether address looks like local@domain.tld.
func Validate(address string) bool {
	return addressRegex.MatchString(address)
}

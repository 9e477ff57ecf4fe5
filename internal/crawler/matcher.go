package crawler

import "strings"

// Matches reports whether content contains the target phrase.
//
// The check is case-sensitive substring containment with no normalization
// and no regex. It gates expansion only in phrase-gated hunt mode; the
// unconditional traversal scrapes content regardless and never consults it.
func Matches(content, targetPhrase string) bool {
	return strings.Contains(content, targetPhrase)
}

// Package sink contains the side-effecting collaborators the traversal
// engine fires content at.
//
// The Harvester writes per-domain artifacts (content.txt, emails.txt,
// downloaded media, saved scripts) and the ErrorLog appends failure lines
// to a persistent file. Both are strictly best-effort: every failure is
// logged and swallowed, and nothing here can abort a traversal run. The
// crawler only knows these types through its ContentSink and ErrorSink
// interfaces.
package sink

// Package pending tracks in-flight operations between request dispatch and
// response delivery. The table maps correlation ids to their accumulated
// responses, classifies after every delivery, and expires entries whose
// deadline passes, settling each operation's result handle exactly once.
package pending

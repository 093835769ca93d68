// Package normalisers turns files dropped into the transcript inbox into
// journal recordings.
package normalisers

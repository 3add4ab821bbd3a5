// Package textutil provides the word model and keyword vocabularies shared by
// the classifier, aligner, merger, and gap analyzer.
//
// Words are whitespace-separated fields; that is the unit used for word counts
// and transcript windows. Keyword matching works on lowercase tokens split on
// non-alphanumeric runs, so "Function()" matches "function" and multi-word
// terms such as "load balancer" match across punctuation and line breaks.
package textutil

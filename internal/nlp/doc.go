// Package nlp wraps the statistical NLP engine behind span-oriented functions.
//
// Every function takes raw text and returns results aligned to byte offsets in
// that text, so callers can turn them into annotations without knowing the
// engine's own data types:
//   - Tokenize: word and punctuation tokens
//   - Sentences: sentence boundaries
//   - Tag: part-of-speech tags per token
//   - Entities: named entities (PERSON, GPE) from the engine's model
//
// Gazetteer matching (list lookup over token sequences) and orthographic
// classification live here as well, since they only depend on token text.
package nlp

// Package ocr exposes text recognition as an optional capability.
//
// Callers depend on Recognizer. Disabled is the null object used when OCR is
// turned off; Tesseract shells out to the tesseract CLI. Limit wraps any
// Recognizer with a concurrency cap and a per-call timeout so slow OCR calls
// cannot stall the classifier pool.
package ocr

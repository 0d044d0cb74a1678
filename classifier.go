package main

import (
	"bytes"
	"unicode/utf8"
)

type contentClass int

const (
	classText contentClass = iota
	classBinary
)

// nonPrintableThreshold is the fraction of suspect bytes in the inspected
// prefix above which a file is treated as binary.
const nonPrintableThreshold = 0.30

// classify decides Text vs Binary from a file's leading bytes (at most
// binaryCheckWindow of them). A NUL byte is a definitive binary signal;
// otherwise the ratio of non-printable and invalid-UTF-8 bytes decides.
// Deterministic and side-effect-free; empty input is text.
func classify(prefix []byte) contentClass {
	if len(prefix) == 0 {
		return classText
	}
	if bytes.IndexByte(prefix, 0) >= 0 {
		return classBinary
	}

	suspect := 0
	for i := 0; i < len(prefix); {
		r, size := utf8.DecodeRune(prefix[i:])
		if r == utf8.RuneError && size == 1 {
			// Invalid encoding counts toward the binary signal, it is
			// not a hard failure.
			suspect++
			i++
			continue
		}
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			suspect += size
		}
		i += size
	}

	if float64(suspect)/float64(len(prefix)) > nonPrintableThreshold {
		return classBinary
	}
	return classText
}

package main

// skipReason records why a file or directory was left out of the output.
type skipReason int

const (
	skipHidden skipReason = iota
	skipIgnored
	skipExcluded
	skipOversize
	skipBudget
	skipUnreadable
)

func (r skipReason) String() string {
	switch r {
	case skipHidden:
		return "hidden"
	case skipIgnored:
		return "gitignored"
	case skipExcluded:
		return "excluded"
	case skipOversize:
		return "oversized"
	case skipBudget:
		return "budget"
	case skipUnreadable:
		return "unreadable"
	}
	return "unknown"
}

// disposition is the outcome of reading and classifying one candidate file.
type disposition int

const (
	includedText   disposition = iota
	includedBinary             // binary content embedded verbatim (--all only)
	markedBinary               // header plus the binary marker, no content
	skippedFile
)

// binaryMarker stands in for the content of a binary file when --all is not set.
const binaryMarker = "<BINARY_FILE>"

// fileRecord is the immutable result of processing one candidate.
// content is present only for includedText and includedBinary.
type fileRecord struct {
	path    string
	disp    disposition
	reason  skipReason // valid only when disp == skippedFile
	content []byte
}

// candidate is a file entry that survived hidden/ignore/exclude filtering and
// is eligible for content reading. Emitted by the walker in traversal order.
type candidate struct {
	path  string
	size  int64
	depth int
}

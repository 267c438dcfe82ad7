package processor

import "bytes"

// Format is the detected container format of an input
type Format int

const (
	FormatUnknown Format = iota
	FormatXML
	FormatZip
)

func (f Format) String() string {
	switch f {
	case FormatXML:
		return "xml"
	case FormatZip:
		return "zip"
	default:
		return "unknown"
	}
}

var (
	utf8BOM  = []byte{0xEF, 0xBB, 0xBF}
	zipMagic = []byte{'P', 'K', 0x03, 0x04}
)

// DetectFormat sniffs the leading bytes of data
func DetectFormat(data []byte) Format {
	if bytes.HasPrefix(data, zipMagic) {
		return FormatZip
	}

	trimmed := bytes.TrimLeft(bytes.TrimPrefix(data, utf8BOM), " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatUnknown
}

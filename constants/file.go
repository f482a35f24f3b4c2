package constants

import "strings"

// AllowedExtensions holds the file extensions picked up by directory ingest.
// Fragment dumps are JSON documents produced by the OCR engine adapter.
var AllowedExtensions = map[string]struct{}{
	"json": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ImageExtensions are picked up instead when an external OCR command turns
// scans into fragments.
var ImageExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"tif":  {},
	"tiff": {},
}

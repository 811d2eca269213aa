package menu

import (
	"errors"
	"path/filepath"
	"strings"
)

// Allowed set mirrors the decoders preprocessing registers; anything else
// would be accepted here only to fail decoding later.
var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// ValidateImageFilename rejects uploads that are not photo formats.
func ValidateImageFilename(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))

	if ext == "" {
		return errors.New("file extension missing")
	}

	if !allowedImageExt[ext] {
		return errors.New("file type not allowed, upload a menu photo")
	}

	return nil
}

package menu

import "testing"

func TestValidateImageFilename(t *testing.T) {
	valid := []string{"menu.jpg", "menu.JPEG", "photo.png"}
	for _, name := range valid {
		if err := ValidateImageFilename(name); err != nil {
			t.Errorf("%s: expected valid, got %v", name, err)
		}
	}

	// Formats without a registered decoder are rejected up front instead of
	// failing mid-run in preprocessing.
	invalid := []string{"menu.pdf", "menu.gif", "scan.webp", "shot.heic", "menu", "archive.zip", "menu.jpg.exe"}
	for _, name := range invalid {
		if err := ValidateImageFilename(name); err == nil {
			t.Errorf("%s: expected rejection", name)
		}
	}
}

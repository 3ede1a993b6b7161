package command

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"usbflash/internal/apperr"
	"usbflash/internal/selection"
	"usbflash/internal/structures"
)

// FlashScript is the entry point inside the ESP checkout that performs the
// actual write to the device.
const FlashScript = "./flashusb.sh"

var ErrArtifactNotFound = errors.New("installation image couldn't be found in expected location")

// Spec is a finished flashing invocation, an argv slice that String joins
// into the single shell command line the supervisor runs.
type Spec []string

func (s Spec) String() string {
	return strings.Join(s, " ")
}

// Build assembles the flashusb.sh invocation for the given selection. It
// only inspects the filesystem, it never writes or executes anything.
func Build(cfg *structures.ProvisionConfig, devPath string, sel selection.Selection) (Spec, error) {
	if sel.ImageURL != "" {
		return Spec{FlashScript, "-d", devPath, "-u", sel.ImageURL}, nil
	}

	image := filepath.Join(cfg.UsbImages.OutputPath,
		fmt.Sprintf("%s-%s.img", sel.Profile, sel.Bios))

	if _, err := os.Stat(image); err != nil {
		return nil, apperr.Errorf(apperr.RuntimeError, "%w:\n    %s", ErrArtifactNotFound, image)
	}

	// The child runs inside esp.dest_dir, so the artifact path has to
	// survive the directory change.
	abs, err := filepath.Abs(image)
	if err != nil {
		return nil, apperr.Errorf(apperr.RuntimeError, "resolving image path: %w", err)
	}

	return Spec{FlashScript, "-d", devPath, "-i", abs, "-b", string(sel.Bios)}, nil
}

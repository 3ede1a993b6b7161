package selection

import (
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"usbflash/internal/apperr"
	"usbflash/internal/structures"
)

// BiosType is the firmware flavor baked into an image name.
type BiosType string

const (
	BiosLegacy BiosType = "bios"
	BiosEFI    BiosType = "efi"
)

// AllProfiles is the profile name used when all-in-one images are built.
const AllProfiles = "all"

var (
	ErrInvalidProfileChoice = errors.New("wrong profile number")
	ErrBuildDisabled        = errors.New("build parameter set to false in config")
	ErrInvalidBiosChoice    = errors.New("wrong bios type specified")
	ErrNoBiosType           = errors.New("couldn't recognize expected bios type, both 'bios' and 'efi' set to false, check config")
)

// Selection is the resolved flashing target. Either ImageURL is set and the
// other fields are empty, or Profile and Bios identify a local artifact.
type Selection struct {
	ImageURL string
	Profile  string
	Bios     BiosType
}

// ChoiceProvider supplies raw operator answers. Implementations only
// collect input, all parsing and validation stays in the Resolver.
type ChoiceProvider interface {
	// ProfileChoice presents the ordered profile names and returns the
	// operator's answer verbatim.
	ProfileChoice(names []string) (string, error)
	// BiosChoice asks for the firmware flavor and returns the answer
	// verbatim.
	BiosChoice() (string, error)
}

// Resolver narrows the configuration plus operator answers down to a
// single Selection.
type Resolver struct {
	choices ChoiceProvider
	log     *slog.Logger
}

func NewResolver(choices ChoiceProvider, log *slog.Logger) *Resolver {
	return &Resolver{
		choices: choices,
		log:     log,
	}
}

// Resolve produces the flashing target. A non-empty imageURL short-circuits
// resolution entirely, the config is not consulted.
func (r *Resolver) Resolve(cfg *structures.ProvisionConfig, imageURL string) (Selection, error) {
	if imageURL != "" {
		r.log.Debug("using direct image URL", "url", imageURL)
		return Selection{ImageURL: imageURL}, nil
	}

	profile, err := r.chooseProfile(cfg)
	if err != nil {
		return Selection{}, err
	}

	bios, err := r.chooseBios(cfg)
	if err != nil {
		return Selection{}, err
	}

	r.log.Debug("selection resolved", "profile", profile, "bios", string(bios))

	return Selection{Profile: profile, Bios: bios}, nil
}

func (r *Resolver) chooseProfile(cfg *structures.ProvisionConfig) (string, error) {
	r.log.Debug("choosing OS profile", "all_in_one", cfg.UsbImages.AllInOne, "profiles", len(cfg.Profiles))

	if cfg.UsbImages.AllInOne {
		r.log.Info("all-in-one image generation set to true in config, using all-in-one image for specified bios")
		return AllProfiles, nil
	}

	r.log.Info("all-in-one image generation set to false in config")

	names := cfg.ProfileNames()

	answer, err := r.choices.ProfileChoice(names)
	if err != nil {
		return "", apperr.Errorf(apperr.ArgumentError, "reading profile choice: %w", err)
	}

	choice, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return "", apperr.Errorf(apperr.ArgumentError, "%w: '%s'", ErrInvalidProfileChoice, answer)
	}

	if choice < 1 || choice > len(names) {
		return "", apperr.Errorf(apperr.ArgumentError, "%w: %d", ErrInvalidProfileChoice, choice)
	}

	return names[choice-1], nil
}

func (r *Resolver) chooseBios(cfg *structures.ProvisionConfig) (BiosType, error) {
	usb := cfg.UsbImages

	r.log.Debug("choosing bios type", "build", usb.Build, "bios", usb.Bios, "efi", usb.Efi)

	if !usb.Build {
		return "", apperr.Wrap(apperr.ConfigError, ErrBuildDisabled)
	}

	switch {
	case usb.Bios && usb.Efi:
		answer, err := r.choices.BiosChoice()
		if err != nil {
			return "", apperr.Errorf(apperr.ArgumentError, "reading bios choice: %w", err)
		}

		switch BiosType(strings.TrimSpace(answer)) {
		case BiosLegacy:
			return BiosLegacy, nil
		case BiosEFI:
			return BiosEFI, nil
		default:
			return "", apperr.Errorf(apperr.ArgumentError, "%w:\n    %s", ErrInvalidBiosChoice, answer)
		}

	case usb.Bios:
		return BiosLegacy, nil

	case usb.Efi:
		return BiosEFI, nil

	default:
		return "", apperr.Wrap(apperr.ConfigError, ErrNoBiosType)
	}
}

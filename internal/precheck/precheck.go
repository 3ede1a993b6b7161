package precheck

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"usbflash/internal/apperr"
)

var (
	ErrMissingPrivilege  = errors.New("this tool must be run as the root user; use the 'sudo su -' command to change it")
	ErrMissingDevicePath = errors.New("device path not specified")
	ErrDeviceNotFound    = errors.New("device path does not exist")
	ErrBadURLScheme      = errors.New("URL format incorrect, scheme should be http or https")
	ErrBadURLExtension   = errors.New("URL is not pointing to an img file")
	ErrBadURLNaming      = errors.New("URL is not pointing to an acceptable file, provided image should have a format of: {profile}-{bios}.img")
	ErrURLUnreachable    = errors.New("wrong USB image URL")
)

// Checker validates the environment before any flashing command is built.
// A failed check is terminal for the run, nothing is retried.
type Checker struct {
	// ProbeTimeout bounds the URL reachability probe. The child process
	// itself runs without a timeout, this is the only bounded operation.
	ProbeTimeout time.Duration

	log *slog.Logger
}

func NewChecker(log *slog.Logger) *Checker {
	return &Checker{
		ProbeTimeout: time.Second,
		log:          log,
	}
}

// Check verifies privilege, device presence and, when imageURL is set, that
// the URL matches the image naming contract and answers a short GET probe.
// The device path is checked once here, there is no re-check at flash time.
func (c *Checker) Check(devPath, imageURL string, privileged bool) error {
	c.log.Debug("checking preconditions", "dev", devPath, "url", imageURL)

	if !privileged {
		return apperr.Wrap(apperr.MissingPrerequisite, ErrMissingPrivilege)
	}

	if devPath == "" {
		return apperr.Wrap(apperr.MissingPrerequisite, ErrMissingDevicePath)
	}

	if _, err := os.Stat(devPath); err != nil {
		return apperr.Errorf(apperr.MissingPrerequisite,
			"%w in expected location '%s'", ErrDeviceNotFound, devPath)
	}

	if imageURL == "" {
		return nil
	}

	return c.checkImageURL(imageURL)
}

func (c *Checker) checkImageURL(imageURL string) error {
	parsed, err := url.Parse(imageURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return apperr.Errorf(apperr.ArgumentError, "%w:\n    %s", ErrBadURLScheme, imageURL)
	}

	if !strings.HasSuffix(strings.ToLower(imageURL), ".img") {
		return apperr.Errorf(apperr.ArgumentError, "%w:\n    %s", ErrBadURLExtension, imageURL)
	}

	// Naming contract with the image pipeline, not a content check.
	if !strings.Contains(imageURL, "-bios") && !strings.Contains(imageURL, "-efi") {
		return apperr.Errorf(apperr.ArgumentError, "%w:\n    %s", ErrBadURLNaming, imageURL)
	}

	client := &http.Client{Timeout: c.ProbeTimeout}

	resp, err := client.Get(imageURL)
	if err != nil {
		return apperr.Errorf(apperr.ArgumentError, "%w:\n    %s\n    %v", ErrURLUnreachable, imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return apperr.Errorf(apperr.ArgumentError, "%w:\n    %s\n    %s", ErrURLUnreachable, imageURL, resp.Status)
	}

	return nil
}

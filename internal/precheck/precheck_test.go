package precheck

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"usbflash/internal/apperr"
)

func newTestChecker() *Checker {
	return NewChecker(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeDevice stands in for a block device node, the checker only cares
// about path existence.
func fakeDevice(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "sdc")
	require.NoError(t, os.WriteFile(path, nil, 0644))
	return path
}

func TestCheck_MissingPrivilege(t *testing.T) {
	t.Parallel()

	err := newTestChecker().Check(fakeDevice(t), "", false)

	require.ErrorIs(t, err, ErrMissingPrivilege)
	assert.Equal(t, int(apperr.MissingPrerequisite), apperr.ExitCode(err))
}

func TestCheck_MissingDevicePath(t *testing.T) {
	t.Parallel()

	err := newTestChecker().Check("", "", true)

	require.ErrorIs(t, err, ErrMissingDevicePath)
	assert.Equal(t, int(apperr.MissingPrerequisite), apperr.ExitCode(err))
}

func TestCheck_DeviceNotFound(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "nonexistent")

	err := newTestChecker().Check(missing, "", true)

	require.ErrorIs(t, err, ErrDeviceNotFound)
	assert.Contains(t, err.Error(), missing)
	assert.Equal(t, int(apperr.MissingPrerequisite), apperr.ExitCode(err))
}

func TestCheck_NoURL(t *testing.T) {
	t.Parallel()

	require.NoError(t, newTestChecker().Check(fakeDevice(t), "", true))
}

func TestCheck_URLValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		url  string
		want error
	}{
		{name: "ftp scheme", url: "ftp://host/edge-bios.img", want: ErrBadURLScheme},
		{name: "no scheme", url: "host/edge-bios.img", want: ErrBadURLScheme},
		{name: "not an img file", url: "http://host/edge-bios.iso", want: ErrBadURLExtension},
		{name: "no bios marker", url: "http://host/edge.img", want: ErrBadURLNaming},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := newTestChecker().Check(fakeDevice(t), tt.url, true)

			require.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.url)
			assert.Equal(t, int(apperr.ArgumentError), apperr.ExitCode(err))
		})
	}
}

func TestCheck_ReachableURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := newTestChecker().Check(fakeDevice(t), srv.URL+"/edge-efi.img", true)

	require.NoError(t, err)
}

func TestCheck_UnreachableURL(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL + "/edge-bios.img"
	srv.Close()

	err := newTestChecker().Check(fakeDevice(t), url, true)

	require.ErrorIs(t, err, ErrURLUnreachable)
	assert.Equal(t, int(apperr.ArgumentError), apperr.ExitCode(err))
}

func TestCheck_URLStatusNotFound(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	err := newTestChecker().Check(fakeDevice(t), srv.URL+"/edge-bios.img", true)

	require.ErrorIs(t, err, ErrURLUnreachable)
}

func TestCheck_URLProbeTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		srv.Close()
	}()

	checker := newTestChecker()
	checker.ProbeTimeout = 50 * time.Millisecond

	start := time.Now()
	err := checker.Check(fakeDevice(t), srv.URL+"/edge-efi.img", true)

	require.ErrorIs(t, err, ErrURLUnreachable)
	assert.Less(t, time.Since(start), 2*time.Second, "probe must be bounded by ProbeTimeout")
}

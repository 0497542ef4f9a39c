package linkcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectorPrivateAddresses(t *testing.T) {
	detector, err := NewDetector()
	require.NoError(t, err)

	private := []string{
		"127.0.0.1",
		"10.0.0.5",
		"172.16.0.1",
		"192.168.1.1",
		"169.254.10.10",
		"::1",
	}
	for _, addr := range private {
		got, err := detector.IsPrivate(addr)
		require.NoError(t, err, addr)
		assert.True(t, got, "%s should be private", addr)
	}
}

func TestDetectorPublicAddresses(t *testing.T) {
	detector, err := NewDetector()
	require.NoError(t, err)

	public := []string{
		"1.1.1.1",
		"8.8.8.8",
		"93.184.216.34",
	}
	for _, addr := range public {
		got, err := detector.IsPrivate(addr)
		require.NoError(t, err, addr)
		assert.False(t, got, "%s should be public", addr)
	}
}

func TestDetectorFromCustomCIDRs(t *testing.T) {
	detector, err := NewDetectorFromCIDRs("203.0.113.0/24")
	require.NoError(t, err)

	got, err := detector.IsPrivate("203.0.113.7")
	require.NoError(t, err)
	assert.True(t, got)

	got, err = detector.IsPrivate("8.8.8.8")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestDetectorInvalidCIDR(t *testing.T) {
	_, err := NewDetectorFromCIDRs("not-a-cidr")
	assert.Error(t, err)
}

func TestDetectorUnresolvableHost(t *testing.T) {
	detector, err := NewDetector()
	require.NoError(t, err)

	_, err = detector.IsPrivate("host.invalid.")
	assert.Error(t, err)
}

package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseQueryType_RoundTrip(t *testing.T) {
	for _, qt := range AllQueryTypes() {
		parsed, ok := ParseQueryType(qt.String())
		assert.True(t, ok)
		assert.Equal(t, qt, parsed)
	}
	_, ok := ParseQueryType("bogus")
	assert.False(t, ok)
}

func TestParseStatus_RoundTrip(t *testing.T) {
	for _, s := range AllStatuses() {
		parsed, ok := ParseStatus(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, parsed)
	}
}

func TestIsBlocked_MatchesSpecSet(t *testing.T) {
	blocked := []Status{
		StatusGravity, StatusDenylist, StatusRegex,
		StatusExternalBlockedIP, StatusExternalBlockedNXRA, StatusExternalBlockedNull,
		StatusGravityCNAME, StatusRegexCNAME, StatusDenylistCNAME,
		StatusDBBusy, StatusSpecialDomain,
	}
	for _, s := range blocked {
		assert.Truef(t, IsBlocked(s), "%s should be blocked", s)
	}

	notBlocked := []Status{
		StatusUnknown, StatusForwarded, StatusCache, StatusRetried,
		StatusRetriedDNSSEC, StatusInProgress, StatusCacheStale,
	}
	for _, s := range notBlocked {
		assert.Falsef(t, IsBlocked(s), "%s should not be blocked", s)
	}
}

func TestIsCachedIsForwarded_Disjoint(t *testing.T) {
	for _, s := range AllStatuses() {
		if IsCached(s) {
			assert.Falsef(t, IsForwarded(s), "%s cannot be both cached and forwarded", s)
		}
	}
	assert.True(t, IsCached(StatusCache))
	assert.True(t, IsCached(StatusCacheStale))
	assert.True(t, IsForwarded(StatusForwarded))
	assert.True(t, IsForwarded(StatusRetried))
	assert.True(t, IsForwarded(StatusRetriedDNSSEC))
}

package request

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, body string, v any) error {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return Decode(r, v)
}

func TestDecode_CreateConsole(t *testing.T) {
	var req CreateConsole
	err := decodeBody(t, `{"name":"Office","backup_url":"https://unifi.example.com/backup"}`, &req)
	require.NoError(t, err)
	assert.Equal(t, "Office", req.Name)
}

func TestDecode_CreateConsole_NameMustBePathSafe(t *testing.T) {
	for _, name := range []string{"../escape", "a/b", "", " leading", strings.Repeat("a", 80)} {
		var req CreateConsole
		err := decodeBody(t, `{"name":"`+name+`","backup_url":"https://unifi.example.com"}`, &req)
		assert.Error(t, err, "name %q", name)
	}
}

func TestDecode_CreateConsole_AllowsSpacesAndDots(t *testing.T) {
	var req CreateConsole
	err := decodeBody(t, `{"name":"Office 2.0","backup_url":"https://unifi.example.com"}`, &req)
	assert.NoError(t, err)
}

func TestDecode_CreateConsole_RejectsNonHTTPURL(t *testing.T) {
	var req CreateConsole
	err := decodeBody(t, `{"name":"Office","backup_url":"file:///etc/passwd"}`, &req)
	assert.Error(t, err)
}

func TestDecode_UpdateSchedule_RequiresBackupInterval(t *testing.T) {
	var req UpdateSchedule
	err := decodeBody(t, `{"check_interval_minutes":60}`, &req)
	assert.Error(t, err)
}

func TestDecode_UpdateSchedule_CheckIntervalOptional(t *testing.T) {
	var req UpdateSchedule
	err := decodeBody(t, `{"backup_interval_minutes":60,"checks_enabled":false}`, &req)
	require.NoError(t, err)
	assert.Zero(t, req.CheckIntervalMinutes)
}

func TestRequireName(t *testing.T) {
	name, err := RequireName("Office")
	require.NoError(t, err)
	assert.Equal(t, "Office", name)

	_, err = RequireName("")
	assert.Error(t, err)
}

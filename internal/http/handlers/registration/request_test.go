package registration

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/gym-portal/internal/models"
)

func formRequest(values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/registration", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestParseForm(t *testing.T) {
	t.Run("all fields with preset", func(t *testing.T) {
		form, err := ParseForm(formRequest(url.Values{
			"full_name":           {"Abe Suni"},
			"is_student":          {"on"},
			"branch":              {"Downtown"},
			"membership_duration": {"30 days"},
			CaptchaField:          {"captcha-token"},
		}))
		require.NoError(t, err)

		c := form.Candidate
		assert.Equal(t, "Abe Suni", c.Username)
		assert.Equal(t, "Abe Suni", *c.FullName)
		assert.True(t, *c.IsStudent)
		assert.Equal(t, "Downtown", *c.Branch)
		require.NotNil(t, c.MembershipDurationPreset)
		assert.Equal(t, models.PresetThirtyDays, *c.MembershipDurationPreset)
		assert.Nil(t, c.MembershipDurationSpecific)
		assert.Equal(t, "captcha-token", form.CaptchaToken)
	})

	t.Run("explicit date and missing fields", func(t *testing.T) {
		form, err := ParseForm(formRequest(url.Values{
			"membership_duration": {"2030-01-01"},
		}))
		require.NoError(t, err)

		c := form.Candidate
		assert.Empty(t, c.Username)
		assert.Nil(t, c.FullName)
		assert.Nil(t, c.IsStudent)
		assert.Nil(t, c.Branch)
		require.NotNil(t, c.MembershipDurationSpecific)
		assert.Equal(t, "2030-01-01", *c.MembershipDurationSpecific)
	})
}

func TestRemoteIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	assert.Equal(t, "10.1.2.3", RemoteIP(req))

	req.RemoteAddr = "10.1.2.3"
	assert.Equal(t, "10.1.2.3", RemoteIP(req))
}

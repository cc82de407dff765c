package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAuthToken = "12345"

// sign computes X-Twilio-Signature the way Twilio does
func sign(token, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	data := fullURL
	for _, k := range keys {
		data += k + form.Get(k)
	}

	h := hmac.New(sha1.New, []byte(token))
	h.Write([]byte(data))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func webhookApp(token, publicBaseURL string) *fiber.App {
	app := fiber.New()
	app.Post("/webhook/whatsapp", ValidateTwilioSignature(token, publicBaseURL), func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	return app
}

func postForm(form url.Values, signature string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if signature != "" {
		req.Header.Set("X-Twilio-Signature", signature)
	}
	return req
}

func TestValidateTwilioSignature(t *testing.T) {
	base := "https://bot.zosswater.example"
	form := url.Values{"From": {"whatsapp:+1555"}, "Body": {"Hello"}, "ProfileName": {"Jo"}}
	valid := sign(testAuthToken, base+"/webhook/whatsapp", form)

	cases := []struct {
		name      string
		token     string
		signature string
		status    int
	}{
		{"valid signature", testAuthToken, valid, fiber.StatusOK},
		{"missing signature", testAuthToken, "", fiber.StatusUnauthorized},
		{"wrong signature", testAuthToken, sign("other", base+"/webhook/whatsapp", form), fiber.StatusUnauthorized},
		{"no auth token configured", "", valid, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := webhookApp(tc.token, base+"/").Test(postForm(form, tc.signature))
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

func TestValidateTwilioSignature_TamperedBody(t *testing.T) {
	base := "https://bot.zosswater.example"
	form := url.Values{"From": {"whatsapp:+1555"}, "Body": {"Hello"}}
	signature := sign(testAuthToken, base+"/webhook/whatsapp", form)

	form.Set("Body", "Goodbye")
	resp, err := webhookApp(testAuthToken, base).Test(postForm(form, signature))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRequireAPIKey(t *testing.T) {
	newApp := func(key string) *fiber.App {
		app := fiber.New()
		app.Get("/api/ping", RequireAPIKey(key), func(c *fiber.Ctx) error {
			return c.SendString("pong")
		})
		return app
	}

	cases := []struct {
		name   string
		key    string
		header string
		status int
	}{
		{"disabled", "", "", fiber.StatusOK},
		{"matching key", "s3cret", "s3cret", fiber.StatusOK},
		{"missing key", "s3cret", "", fiber.StatusUnauthorized},
		{"wrong key", "s3cret", "guess", fiber.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
			if tc.header != "" {
				req.Header.Set(APIKeyHeader, tc.header)
			}
			resp, err := newApp(tc.key).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}

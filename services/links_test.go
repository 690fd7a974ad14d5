package services_test

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rpupo63/blog-backend/services"
)

func TestBuildResetLink(t *testing.T) {
	assert.Equal(t, "http://blog.test/reset-password?token=abc.def", services.BuildResetLink("http://blog.test", "abc.def"))
	assert.Equal(t, "http://blog.test/reset-password?token=abc.def", services.BuildResetLink("http://blog.test/", "abc.def"))
	assert.Equal(t, "https://app.test/auth/reset-password?token=a%2Bb", services.BuildResetLink("https://app.test/auth/", "a+b"))
}

func TestRequestBaseURL(t *testing.T) {
	r := httptest.NewRequest("POST", "http://api.blog.test/api/auth/forgot-password", nil)
	assert.Equal(t, "http://api.blog.test/", services.RequestBaseURL(r))

	r.Header.Set("X-Forwarded-Proto", "https, http")
	assert.Equal(t, "https://api.blog.test/", services.RequestBaseURL(r))
}

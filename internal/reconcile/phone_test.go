package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhoneDigits(t *testing.T) {
	assert.Equal(t, "5511999998888", PhoneDigits("+55 (11) 99999-8888"))
	assert.Equal(t, "", PhoneDigits("sem telefone"))
	assert.Equal(t, "42", PhoneDigits(42))
}

func TestPhonesAreSimilar(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{
			name:     "exact digits through formatting",
			a:        "(11) 99999-8888",
			b:        "11999998888",
			expected: true,
		},
		{
			name:     "suffix absorbs country code",
			a:        "+55 11 99999-8888",
			b:        "11999998888",
			expected: true,
		},
		{
			name:     "short but equal",
			a:        "1234567",
			b:        "1234567",
			expected: true,
		},
		{
			name:     "short suffix rejected",
			a:        "1234567",
			b:        "71234567",
			expected: false,
		},
		{
			name:     "different lines",
			a:        "11999998888",
			b:        "11988887777",
			expected: false,
		},
		{
			name:     "empty never matches",
			a:        "",
			b:        "11999998888",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PhonesAreSimilar(tt.a, tt.b))
			assert.Equal(t, tt.expected, PhonesAreSimilar(tt.b, tt.a), "must be symmetric")
		})
	}
}

func TestCanonicalPhone(t *testing.T) {
	// Valid BR mobile formats to E.164.
	assert.Equal(t, "+5511999998888", CanonicalPhone("(11) 99999-8888"))
	// Already international stays E.164.
	assert.Equal(t, "+5511999998888", CanonicalPhone("+55 11 99999-8888"))
	// Invalid input returns trimmed.
	assert.Equal(t, "abc", CanonicalPhone("  abc  "))
	assert.Equal(t, "", CanonicalPhone("   "))
}

package emailcheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidFormat(t *testing.T) {
	cases := []struct {
		email string
		want  bool
	}{
		{"ana@kos.id", true},
		{"ana.pemilik+kos@gmail.com", true},
		{"ANA@KOS.ID", true},
		{"a_b-c%d@sub.domain.co.id", true},
		{"", false},
		{"ana", false},
		{"ana@", false},
		{"@kos.id", false},
		{"ana@kos", false},
		{"ana kos@kos.id", false},
		{"ana@kos.i", false},
	}

	for _, tc := range cases {
		t.Run(tc.email, func(t *testing.T) {
			assert.Equal(t, tc.want, ValidFormat(tc.email))
		})
	}
}

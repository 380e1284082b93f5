package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Benoît Martin", "benoit martin"},
		{"Chloé", "chloe"},
		{"  Alice   D. ", "alice d"},
		{"PEUT-ÊTRE", "peut etre"},
		{"Trần Văn Đức", "tran van duc"},
		{"task #42: follow-up!", "task 42 follow up"},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Fold(tc.in), "input %q", tc.in)
	}
}

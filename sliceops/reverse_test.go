package sliceops

import (
	"bytes"
	"testing"
)

func TestReverse(t *testing.T) {
	for _, tc := range []struct {
		in, exp []byte
	}{
		{nil, nil},
		{[]byte{}, nil},
		{[]byte{1}, []byte{1}},
		{[]byte{1, 2}, []byte{2, 1}},
		{[]byte{1, 2, 3, 4, 5}, []byte{5, 4, 3, 2, 1}},
	} {
		in := append([]byte(nil), tc.in...)
		got := Reverse(tc.in)
		if !bytes.Equal(got, tc.exp) {
			t.Fatalf("Reverse(% X) = % X, want % X", tc.in, got, tc.exp)
		}
		if !bytes.Equal(tc.in, in) {
			t.Fatalf("input modified")
		}
	}
}

//go:build !gocv
// +build !gocv

package detection

import "testing"

func TestNewBackend_GoCVRequiresTag(t *testing.T) {
	b, err := NewBackend(BackendGoCV)
	if err == nil {
		t.Fatal("Expected error without the gocv build tag")
	}
	if b != nil {
		t.Errorf("Backend: got %v, want nil", b)
	}
}

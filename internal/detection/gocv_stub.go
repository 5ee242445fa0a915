//go:build !gocv
// +build !gocv

package detection

import "errors"

// NewGoCV returns an error if the build lacks the gocv tag.
func NewGoCV() (Backend, error) {
	return nil, errors.New("gocv build tag is not enabled")
}

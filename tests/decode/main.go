// +build gofuzz

package fuzz

import "github.com/xaml-go/xaml"

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	s, err := xaml.Decode(data)
	if err != nil {
		return 0
	}
	_, _ = xaml.ParseString(s)
	return 1
}

// +build gofuzz

package fuzz

import (
	"github.com/xaml-go/xaml"
)

// Fuzz is a fuzz test.
func Fuzz(data []byte) int {
	tokenizer := xaml.NewTokenizer(xaml.SplitLines(string(data)))
	for {
		tok := tokenizer.Next()
		if tok.TokenType == xaml.ErrorToken {
			break
		}
	}
	if _, err := xaml.ParseString(string(data)); err != nil {
		return 0
	}
	return 1
}

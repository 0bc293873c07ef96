package asn1kit

/*
common.go contains elements, types and functions used by myriad
components throughout this package.
*/

import (
	"bytes"
	"encoding/hex"
	"strconv"
	"strings"
)

/*
official import aliases.

Kept as package-level function variables rather than called inline, in
the same spirit as the teacher package: it keeps call sites terse and
gives every file in this package one obvious place to look for the
stdlib primitive behind a given alias.
*/
var (
	itoa    func(int) string              = strconv.Itoa
	atoi    func(string) (int, error)     = strconv.Atoi
	hexstr  func([]byte) string           = hex.EncodeToString
	lc      func(string) string           = strings.ToLower
	uc      func(string) string           = strings.ToUpper
	split   func(string, string) []string = strings.Split
	join    func([]string, string) string = strings.Join
	hasPfx  func(string, string) bool     = strings.HasPrefix
	hasSfx  func(string, string) bool     = strings.HasSuffix
	trimPfx func(string, string) string   = strings.TrimPrefix
	trimS   func(string) string           = strings.TrimSpace
	trim    func(string, string) string   = strings.Trim
)

func newStrBuilder() strings.Builder { return strings.Builder{} }
func newByteBuffer() bytes.Buffer    { return bytes.Buffer{} }

func bool2str(b bool) (s string) {
	if s = `false`; b {
		s = `true`
	}
	return
}

func strInSlice(s string, sl []string) bool {
	for _, x := range sl {
		if x == s {
			return true
		}
	}
	return false
}

func intInSlice(i int, sl []int) bool {
	for _, x := range sl {
		if x == i {
			return true
		}
	}
	return false
}

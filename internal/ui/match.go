package ui

import (
	"strings"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

var fzfSlab = util.MakeSlab(16384, 1024)

func init() {
	algo.Init("default")
}

// fuzzyScore matches text against a query with fzf's v2 algorithm,
// case-insensitively. It returns a negative score when there is no match and
// zero for an empty query.
func fuzzyScore(text, query string) int {
	if query == "" {
		return 0
	}
	chars := util.ToChars([]byte(strings.ToLower(text)))
	pattern := []rune(strings.ToLower(query))
	result, _ := algo.FuzzyMatchV2(false, false, true, &chars, pattern, false, fzfSlab)
	if result.Start < 0 {
		return -1
	}
	return result.Score
}

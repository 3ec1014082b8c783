package helper

import (
	"regexp"
	"strconv"
)

var scorePattern = regexp.MustCompile(`\d*\.?\d+`)

// ParseScore モデルの応答から最初に現れる数値を取り出す（見つからなければ false）
func ParseScore(text string) (float64, bool) {
	match := scorePattern.FindString(text)
	if match == "" {
		return 0, false
	}
	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return score, true
}

package testutils

import (
	"github.com/brianvoe/gofakeit/v6"
)

// GenerateTexts returns count deterministic English-like texts of roughly words words each.
func GenerateTexts(seed int64, count, words int) []string {
	faker := gofakeit.NewUnlocked(seed)
	texts := make([]string, count)
	for i := range texts {
		texts[i] = faker.Sentence(words)
	}
	return texts
}

// GenerateBlobs returns count texts of exactly size ASCII letters, for size-bound tests.
func GenerateBlobs(seed int64, count, size int) []string {
	faker := gofakeit.NewUnlocked(seed)
	texts := make([]string, count)
	for i := range texts {
		texts[i] = faker.LetterN(uint(size))
	}
	return texts
}

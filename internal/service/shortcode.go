package service

import (
	"crypto/rand"
	"math/big"
)

const (
	// 62-символьный алфавит: [a-zA-Z0-9]
	codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	DefaultCodeLength = 6
)

// CodeGenerator выдаёт кандидатов коротких кодов.
// Генератор не знает о коллизиях — их разрешает LinkService.
type CodeGenerator interface {
	Generate() (string, error)
}

type randomCodeGenerator struct {
	length int
}

// NewCodeGenerator создаёт генератор кодов фиксированной длины
func NewCodeGenerator(length int) CodeGenerator {
	if length <= 0 {
		length = DefaultCodeLength
	}
	return &randomCodeGenerator{length: length}
}

func (g *randomCodeGenerator) Generate() (string, error) {
	result := make([]byte, g.length)
	max := big.NewInt(int64(len(codeAlphabet)))

	for i := 0; i < g.length; i++ {
		num, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		result[i] = codeAlphabet[num.Int64()]
	}

	return string(result), nil
}

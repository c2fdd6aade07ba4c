package catalog

import (
	"bufio"
	"bytes"
	"io"
)

// sniffReader mira la primera línea para decidir el separador (las hojas de cálculo en
// español exportan con punto y coma).
type sniffReader struct {
	*bufio.Reader
}

func newSniffReader(r io.Reader) *sniffReader {
	return &sniffReader{Reader: bufio.NewReader(r)}
}

func (s *sniffReader) comma() rune {
	head, _ := s.Peek(4096)
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte(";")) > bytes.Count(head, []byte(",")) {
		return ';'
	}
	return ','
}

package compare

import (
	domdoc "github.com/kailas-cloud/dupscan/internal/domain/document"
)

// Corpus is the read-only snapshot compared in one run. Texts are decoded to
// runes once so every pair reuses them; workers share it without locking.
type Corpus struct {
	docs     []domdoc.Document
	texts    [][]rune
	valid    []bool
	excluded int
}

// NewCorpus snapshots docs in the given order. Pair enumeration is positional,
// so the caller must pass the store's stable order.
func NewCorpus(docs []domdoc.Document) *Corpus {
	c := &Corpus{
		docs:  make([]domdoc.Document, len(docs)),
		texts: make([][]rune, len(docs)),
		valid: make([]bool, len(docs)),
	}
	copy(c.docs, docs)
	for i := range c.docs {
		text, ok := c.docs[i].Text().Value()
		if !ok {
			c.excluded++
			continue
		}
		c.texts[i] = []rune(text)
		c.valid[i] = true
	}
	return c
}

// Len returns the number of documents, including excluded ones.
func (c *Corpus) Len() int { return len(c.docs) }

// Excluded returns how many documents lack valid comparison text.
func (c *Corpus) Excluded() int { return c.excluded }

// Document returns the i-th document.
func (c *Corpus) Document(i int) *domdoc.Document { return &c.docs[i] }

func (c *Corpus) text(i int) ([]rune, bool) {
	return c.texts[i], c.valid[i]
}

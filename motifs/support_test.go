package motifs_test

import (
	"testing"
	"time"

	"github.com/fine-structures/ecomotif/motifs"
	"github.com/stretchr/testify/assert"
)

type fakeCatalog struct {
	motifs.Catalog
	ctx    motifs.CatalogContext
	closed chan struct{}
}

func (cat *fakeCatalog) Close() error {
	cat.ctx.DetachCatalog(cat)
	close(cat.closed)
	return nil
}

func TestCatalogContextClosesOpenCatalogs(t *testing.T) {
	ctx := motifs.NewCatalogContext()

	cats := make([]*fakeCatalog, 3)
	for i := range cats {
		cats[i] = &fakeCatalog{ctx: ctx, closed: make(chan struct{})}
		ctx.AttachCatalog(cats[i])
	}

	// A catalog that closes on its own is no longer waited on
	cats[0].Close()

	ctx.Close()
	ctx.Close()

	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("catalog context never finished closing")
	}

	for _, cat := range cats {
		_, open := <-cat.closed
		assert.False(t, open)
	}
}

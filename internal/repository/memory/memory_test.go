package memory

import (
	"testing"

	"github.com/isdelr/quill-be/internal/repository"
	"github.com/isdelr/quill-be/internal/repository/repotest"
)

func TestMemoryStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) *repository.Store {
		return NewStore()
	})
}
